package walletservice

import (
	"context"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/go-petr/pet-wallet/internal/domain"
	"github.com/go-petr/pet-wallet/pkg/errorspkg"
	"github.com/go-petr/pet-wallet/pkg/randompkg"
)

func randomWallet(balance string) domain.Wallet {
	return domain.Wallet{
		ID:        randompkg.IDBetween(1, 1000),
		Label:     randompkg.Label(),
		Balance:   balance,
		CreatedAt: time.Now().Truncate(time.Second).UTC(),
	}
}

func TestCreate(t *testing.T) {
	wallet := randomWallet("100.00")

	type input struct {
		label   string
		balance string
	}

	testCases := []struct {
		name       string
		input      input
		buildStubs func(repo *MockRepo)
		want       domain.Wallet
		wantErr    error
	}{
		{
			name:  "OK",
			input: input{label: wallet.Label, balance: "100"},
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().
					Create(gomock.Any(), gomock.Eq(wallet.Label), gomock.Eq("100.00")).
					Times(1).
					Return(wallet, nil)
			},
			want: wallet,
		},
		{
			name:  "DefaultBalance",
			input: input{label: "  " + wallet.Label + " "},
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().
					Create(gomock.Any(), gomock.Eq(wallet.Label), gomock.Eq("0.00")).
					Times(1).
					Return(wallet, nil)
			},
			want: wallet,
		},
		{
			name:  "EmptyLabel",
			input: input{label: "   ", balance: "10"},
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantErr: domain.ErrEmptyLabel,
		},
		{
			name:  "InvalidBalance",
			input: input{label: wallet.Label, balance: "10.001"},
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantErr: domain.ErrInvalidAmount,
		},
		{
			name:  "NegativeBalance",
			input: input{label: wallet.Label, balance: "-1"},
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantErr: domain.ErrNegativeBalance,
		},
		{
			name:  "RepoError",
			input: input{label: wallet.Label, balance: "1"},
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().
					Create(gomock.Any(), gomock.Any(), gomock.Any()).
					Times(1).
					Return(domain.Wallet{}, errorspkg.ErrInternal)
			},
			wantErr: errorspkg.ErrInternal,
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := NewMockRepo(ctrl)
			tc.buildStubs(repo)

			s := New(repo)

			got, err := s.Create(context.Background(), tc.input.label, tc.input.balance)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				require.Empty(t, got)

				return
			}

			require.NoError(t, err)

			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("Create() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestGet(t *testing.T) {
	wallet := randomWallet("1.00")

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := NewMockRepo(ctrl)
	repo.EXPECT().Get(gomock.Any(), gomock.Eq(wallet.ID)).Times(1).Return(wallet, nil)
	repo.EXPECT().Get(gomock.Any(), gomock.Eq(wallet.ID+1)).Times(1).Return(domain.Wallet{}, domain.ErrWalletNotFound)

	s := New(repo)

	got, err := s.Get(context.Background(), wallet.ID)
	require.NoError(t, err)
	require.Equal(t, wallet, got)

	_, err = s.Get(context.Background(), wallet.ID+1)
	require.ErrorIs(t, err, domain.ErrWalletNotFound)
}

func TestList(t *testing.T) {
	wallets := []domain.Wallet{randomWallet("5.00"), randomWallet("5.00")}
	balance := "5"
	normalized := "5.00"
	invalid := "five"

	testCases := []struct {
		name       string
		arg        domain.ListWalletsParams
		buildStubs func(repo *MockRepo)
		want       []domain.Wallet
		wantErr    error
	}{
		{
			name: "NormalizesBalance",
			arg:  domain.ListWalletsParams{Balance: &balance, Limit: 10},
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().
					List(gomock.Any(), gomock.Eq(domain.ListWalletsParams{Balance: &normalized, Limit: 10})).
					Times(1).
					Return(wallets, nil)
			},
			want: wallets,
		},
		{
			name: "InvalidBalance",
			arg:  domain.ListWalletsParams{Balance: &invalid, Limit: 10},
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().List(gomock.Any(), gomock.Any()).Times(0)
			},
			wantErr: domain.ErrInvalidAmount,
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := NewMockRepo(ctrl)
			tc.buildStubs(repo)

			got, err := New(repo).List(context.Background(), tc.arg)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}

			require.NoError(t, err)

			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("List() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
