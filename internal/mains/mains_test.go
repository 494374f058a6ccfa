package mains

import "testing"

func TestFrequencyForTimezone(t *testing.T) {
	tests := []struct {
		timezone string
		want     int
	}{
		// 50Hz countries
		{"Europe/London", 50},
		{"Europe/Paris", 50},
		{"Europe/Berlin", 50},
		{"Australia/Sydney", 50},
		{"Asia/Shanghai", 50},
		{"Asia/Tokyo", 50}, // Japan is split; Tokyo side

		// 60Hz countries
		{"America/New_York", 60},
		{"America/Los_Angeles", 60},
		{"America/Chicago", 60},
		{"America/Toronto", 60},
		{"America/Mexico_City", 60},
		{"America/Bogota", 60},    // Colombia
		{"America/Sao_Paulo", 60}, // Brazil
		{"Asia/Seoul", 60},        // South Korea
		{"Asia/Taipei", 60},       // Taiwan
		{"Asia/Manila", 60},       // Philippines

		// Edge cases
		{"UTC", 50},
		{"GMT", 50},
		{"Etc/UTC", 50},
	}

	for _, tt := range tests {
		t.Run(tt.timezone, func(t *testing.T) {
			got := FrequencyForTimezone(tt.timezone)
			if got != tt.want {
				t.Errorf("FrequencyForTimezone(%q) = %d, want %d", tt.timezone, got, tt.want)
			}
		})
	}
}

func TestFrequency(t *testing.T) {
	// Just verify it returns a valid value without panicking
	freq := Frequency()
	if freq != 50 && freq != 60 {
		t.Errorf("Frequency() = %d, want 50 or 60", freq)
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		setting string
		want    int
		wantErr bool
	}{
		{"50", 50, false},
		{"60", 60, false},
		{"60Hz", 60, false},
		{" 50 ", 50, false},
		{"55", 0, true},
		{"mains", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.setting, func(t *testing.T) {
			got, err := Resolve(tt.setting)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Resolve(%q) error = %v, wantErr %v", tt.setting, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Resolve(%q) = %d, want %d", tt.setting, got, tt.want)
			}
		})
	}

	for _, auto := range []string{"auto", "AUTO", ""} {
		if got, err := Resolve(auto); err != nil || (got != Hz50 && got != Hz60) {
			t.Errorf("Resolve(%q) = %d, %v; want 50 or 60", auto, got, err)
		}
	}
}

func TestHarmonics(t *testing.T) {
	tests := []struct {
		name        string
		fundamental float64
		nyquist     float64
		n           int
		want        []float64
	}{
		{"first four of 50 Hz", 50, 24000, 4, []float64{50, 100, 150, 200}},
		{"capped by nyquist", 60, 150, 4, []float64{60, 120}},
		{"fundamental above nyquist", 60, 50, 4, nil},
		{"no harmonics requested", 50, 24000, 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Harmonics(tt.fundamental, tt.nyquist, tt.n)
			if len(got) != len(tt.want) {
				t.Fatalf("Harmonics() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Harmonics()[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}
