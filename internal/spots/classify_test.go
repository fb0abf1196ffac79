package spots

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		coverage float64
		want     string
	}{
		{"zero", 0, MessageClean},
		{"below possible", 4.99, MessageClean},
		{"exactly possible cutoff", 5.0, MessageClean},
		{"just above possible cutoff", 5.001, MessagePossible},
		{"middle", 10, MessagePossible},
		{"exactly extensive cutoff", 15.0, MessagePossible},
		{"just above extensive cutoff", 15.01, MessageExtensive},
		{"full", 100, MessageExtensive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.coverage); got != tt.want {
				t.Errorf("Classify(%v) = %q, want %q", tt.coverage, got, tt.want)
			}
		})
	}
}

func TestCoveragePercent(t *testing.T) {
	tests := []struct {
		name   string
		area   float64
		width  int
		height int
		want   float64
	}{
		{"empty", 0, 100, 100, 0},
		{"quarter", 2500, 100, 100, 25},
		{"non-square", 300, 30, 20, 50},
		{"zero area image", 10, 0, 10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CoveragePercent(tt.area, tt.width, tt.height); got != tt.want {
				t.Errorf("CoveragePercent(%v, %d, %d) = %v, want %v", tt.area, tt.width, tt.height, got, tt.want)
			}
		})
	}
}

func TestRound2(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{3.14159, 3.14},
		{3.146, 3.15},
		{5.0025, 5.0},
		{0, 0},
		{361, 361},
	}

	for _, tt := range tests {
		if got := round2(tt.in); got != tt.want {
			t.Errorf("round2(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Options)
		wantErr bool
	}{
		{"defaults", func(o *Options) {}, false},
		{"zero ratio", func(o *Options) { o.MinAreaRatio = 0 }, false},
		{"negative ratio", func(o *Options) { o.MinAreaRatio = -0.1 }, true},
		{"ratio of one", func(o *Options) { o.MinAreaRatio = 1 }, true},
		{"zero thickness", func(o *Options) { o.LineThickness = 0 }, true},
		{"zero font scale", func(o *Options) { o.FontScale = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			tt.mutate(&opts)
			err := opts.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
