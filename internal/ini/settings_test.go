package ini

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInferKind(t *testing.T) {
	tests := []struct {
		value string
		want  Kind
	}{
		{"true", KindBool},
		{"False", KindBool},
		{"32", KindInt},
		{"-5", KindInt},
		{"0.5", KindFloat},
		{"-1.25", KindFloat},
		{"My Server", KindText},
		{"", KindText},
		{"1.2.3", KindText},
	}
	for _, tt := range tests {
		if got := InferKind(tt.value); got != tt.want {
			t.Errorf("InferKind(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestKindNormalize(t *testing.T) {
	tests := []struct {
		name    string
		kind    Kind
		raw     string
		want    string
		wantErr bool
	}{
		{"Bool lowercases", KindBool, "TRUE", "true", false},
		{"Bool rejects junk", KindBool, "yes please", "", true},
		{"Int canonical", KindInt, " 042 ", "42", false},
		{"Int rejects float", KindInt, "1.5", "", true},
		{"Float canonical", KindFloat, "1.50", "1.5", false},
		{"Float rejects text", KindFloat, "fast", "", true},
		{"Text passes through", KindText, "Anything; goes", "Anything; goes", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.kind.Normalize(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Normalize(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

const settingsIni = `# Maximum number of players.
# Min: 1 Max: 100 Default: 32
MaxPlayers=32

# Player damage multiplier.
# Min: 0.0 Max: 5.0 Default: 1.0
DamageMultiplier=1.0

PVPMelee=true
Mods=ModA
WorkshopItems=111
PublicName=My Server
`

func writeSettingsFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "servertest.ini")
	if err := os.WriteFile(path, []byte(settingsIni), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadAllSettings(t *testing.T) {
	settings, err := ReadAllSettings(writeSettingsFixture(t))
	if err != nil {
		t.Fatalf("ReadAllSettings failed: %v", err)
	}

	byKey := make(map[string]Setting, len(settings))
	for _, s := range settings {
		byKey[s.Key] = s
		if s.Key == "Mods" || s.Key == "WorkshopItems" {
			t.Errorf("mod-list key %s leaked into settings", s.Key)
		}
	}

	mp, ok := byKey["MaxPlayers"]
	if !ok {
		t.Fatal("MaxPlayers not found")
	}
	if mp.Value != "32" || mp.Kind() != KindInt {
		t.Errorf("MaxPlayers = %q (%v)", mp.Value, mp.Kind())
	}
	if mp.Min == nil || *mp.Min != 1 || mp.Max == nil || *mp.Max != 100 {
		t.Errorf("MaxPlayers limits = %v/%v", mp.Min, mp.Max)
	}
	if mp.Default != "32" {
		t.Errorf("MaxPlayers default = %q", mp.Default)
	}
	if !strings.Contains(mp.Comment, "Maximum number of players.") {
		t.Errorf("MaxPlayers comment = %q", mp.Comment)
	}

	dm, ok := byKey["DamageMultiplier"]
	if !ok {
		t.Fatal("DamageMultiplier not found")
	}
	if dm.Kind() != KindFloat || dm.Min == nil || *dm.Min != 0 || dm.Max == nil || *dm.Max != 5 {
		t.Errorf("DamageMultiplier = %q limits %v/%v", dm.Value, dm.Min, dm.Max)
	}

	if pn := byKey["PublicName"]; pn.Comment != "" {
		// The PVPMelee line above it is not a comment and must reset the block.
		t.Errorf("PublicName picked up a stray comment: %q", pn.Comment)
	}
}

func TestWriteSettings(t *testing.T) {
	path := writeSettingsFixture(t)
	if err := WriteSettings(path, map[string]string{"MaxPlayers": "64", "PVPMelee": "false"}); err != nil {
		t.Fatalf("WriteSettings failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	content := string(data)
	if !strings.Contains(content, "MaxPlayers=64\n") {
		t.Error("MaxPlayers not updated")
	}
	if !strings.Contains(content, "PVPMelee=false\n") {
		t.Error("PVPMelee not updated")
	}
	// Everything else is untouched, comments included.
	if !strings.Contains(content, "# Min: 1 Max: 100 Default: 32\n") {
		t.Error("comment line lost")
	}
	if !strings.Contains(content, "Mods=ModA\n") {
		t.Error("Mods directive lost")
	}
}

func TestReadBool(t *testing.T) {
	path := writeSettingsFixture(t)

	got, err := ReadBool(path, "PVPMelee", false)
	if err != nil || !got {
		t.Errorf("ReadBool(PVPMelee) = %v, %v", got, err)
	}
	got, err = ReadBool(path, "NoSuchKey", true)
	if err != nil || !got {
		t.Errorf("ReadBool(NoSuchKey) = %v, %v, want default true", got, err)
	}
}
