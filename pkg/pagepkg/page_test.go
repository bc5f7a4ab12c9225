package pagepkg

import "testing"

func TestNew(t *testing.T) {
	testCases := []struct {
		name                  string
		number, length        int32
		wantPage              Page
		wantLimit, wantOffset int32
	}{
		{name: "Defaults", wantPage: Page{1, 10}, wantLimit: 10, wantOffset: 0},
		{name: "SecondPage", number: 2, length: 2, wantPage: Page{2, 2}, wantLimit: 2, wantOffset: 2},
		{name: "Capped", number: 3, length: 5000, wantPage: Page{3, 1000}, wantLimit: 1000, wantOffset: 2000},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			got := New(tc.number, tc.length, 10, 1000)

			if got != tc.wantPage {
				t.Errorf("New(%v, %v, 10, 1000) = %+v, want %+v", tc.number, tc.length, got, tc.wantPage)
			}

			if got.Limit() != tc.wantLimit || got.Offset() != tc.wantOffset {
				t.Errorf("Limit(), Offset() = %v, %v, want %v, %v",
					got.Limit(), got.Offset(), tc.wantLimit, tc.wantOffset)
			}
		})
	}
}
