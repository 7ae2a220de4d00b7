package config

import "testing"

func TestCamera(t *testing.T) {
	t.Setenv(EnvCamera, "")
	if got := Camera(); got != DefaultCamera {
		t.Errorf("Camera() = %q, want %q", got, DefaultCamera)
	}

	t.Setenv(EnvCamera, "/dev/video0")
	if got := Camera(); got != "/dev/video0" {
		t.Errorf("Camera() = %q, want /dev/video0", got)
	}
}

func TestFloat(t *testing.T) {
	tests := []struct {
		name string
		val  string
		want float64
	}{
		{"unset", "", 75},
		{"valid", "80.5", 80.5},
		{"garbage", "abc", 75},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(EnvRefPx, tc.val)
			if got := Float(EnvRefPx, 75); got != tc.want {
				t.Errorf("Float = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestInt(t *testing.T) {
	t.Setenv(EnvMinArea, "1200")
	if got := Int(EnvMinArea, 500); got != 1200 {
		t.Errorf("Int = %d, want 1200", got)
	}

	t.Setenv(EnvMinArea, "12.5")
	if got := Int(EnvMinArea, 500); got != 500 {
		t.Errorf("Int with non-integer = %d, want default 500", got)
	}
}

func TestWebAddr_DisabledByDefault(t *testing.T) {
	t.Setenv(EnvWebAddr, "")
	if got := WebAddr(); got != "" {
		t.Errorf("WebAddr() = %q, want empty", got)
	}
}
