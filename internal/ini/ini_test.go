package ini

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

const sampleIni = `# Server name
PublicName=My Server
Mods=Hydrocraft;BB_CommonSense;SuperSurvivalMod
WorkshopItems=2875848298;3475754603;1234567890
PVPMelee=true
MaxPlayers=32
`

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		opts     Options
		wantMods []string
		wantWs   []string
	}{
		{
			name:     "Sample file",
			content:  sampleIni,
			wantMods: []string{"Hydrocraft", "BB_CommonSense", "SuperSurvivalMod"},
			wantWs:   []string{"2875848298", "3475754603", "1234567890"},
		},
		{
			name:     "Empty directives",
			content:  "Mods=\nWorkshopItems=\n",
			wantMods: nil,
			wantWs:   nil,
		},
		{
			name:     "Trailing semicolons dropped",
			content:  "Mods=modA;modB;\nWorkshopItems=111;222;\n",
			wantMods: []string{"modA", "modB"},
			wantWs:   []string{"111", "222"},
		},
		{
			name:     "Only semicolons parses empty",
			content:  "Mods=;;;\nWorkshopItems=\n",
			wantMods: nil,
			wantWs:   nil,
		},
		{
			name:     "Internal empties preserved",
			content:  "Mods=a;;b\n",
			wantMods: []string{"a", "", "b"},
			wantWs:   nil,
		},
		{
			name:     "Missing directives",
			content:  "SomeOtherSetting=value\n",
			wantMods: nil,
			wantWs:   nil,
		},
		{
			name:     "Last occurrence wins",
			content:  "Mods=old\nOther=1\nMods=new1;new2\n",
			wantMods: []string{"new1", "new2"},
			wantWs:   nil,
		},
		{
			name:     "Legacy prefix stripped",
			content:  `Mods=\ModA;\ModB` + "\n",
			opts:     Options{LegacyModPrefix: true},
			wantMods: []string{"ModA", "ModB"},
			wantWs:   nil,
		},
		{
			name:     "Prefix kept without legacy mode",
			content:  `Mods=\ModA` + "\n",
			wantMods: []string{`\ModA`},
			wantWs:   nil,
		},
		{
			name:     "Escapes only parses empty",
			content:  `Mods=\;\;` + "\n",
			opts:     Options{LegacyModPrefix: true},
			wantMods: nil,
			wantWs:   nil,
		},
		{
			name:     "No equals sign is opaque",
			content:  "Mods modA;modB\n",
			wantMods: nil,
			wantWs:   nil,
		},
		{
			name:     "Indented directive recognized",
			content:  "  Mods=modA\n",
			wantMods: []string{"modA"},
			wantWs:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mods, ws := Parse(SplitLines(tt.content), tt.opts)
			if !reflect.DeepEqual(mods, tt.wantMods) {
				t.Errorf("Parse mods = %q, want %q", mods, tt.wantMods)
			}
			if !reflect.DeepEqual(ws, tt.wantWs) {
				t.Errorf("Parse workshop ids = %q, want %q", ws, tt.wantWs)
			}
		})
	}
}

func TestRenderPreservesOtherLines(t *testing.T) {
	lines := SplitLines(sampleIni)
	out := Render(lines, []string{"NewMod"}, []string{"999"}, Options{})
	joined := strings.Join(out, "")

	for _, want := range []string{"# Server name\n", "PublicName=My Server\n", "PVPMelee=true\n", "MaxPlayers=32\n"} {
		if !strings.Contains(joined, want) {
			t.Errorf("Render output missing passthrough line %q", want)
		}
	}
	if !strings.Contains(joined, "Mods=NewMod\n") {
		t.Errorf("Render output missing updated Mods line:\n%s", joined)
	}
	if !strings.Contains(joined, "WorkshopItems=999\n") {
		t.Errorf("Render output missing updated WorkshopItems line:\n%s", joined)
	}
}

func TestRenderAppendsMissingDirectives(t *testing.T) {
	out := Render(SplitLines("SomeOtherSetting=value\n"), []string{"TestMod"}, []string{"123"}, Options{})
	joined := strings.Join(out, "")
	if !strings.Contains(joined, "SomeOtherSetting=value\n") {
		t.Error("Render dropped an opaque line")
	}
	if !strings.Contains(joined, "Mods=TestMod\n") || !strings.Contains(joined, "WorkshopItems=123\n") {
		t.Errorf("Render did not append missing directives:\n%s", joined)
	}
}

func TestRenderSelfHealsDuplicates(t *testing.T) {
	content := "Mods=a\nOther=x\nMods=b\nWorkshopItems=1\nWorkshopItems=2\n"
	out := Render(SplitLines(content), []string{"c"}, []string{"3"}, Options{})

	joined := strings.Join(out, "")
	if got := strings.Count(joined, "Mods="); got != 1 {
		t.Errorf("Render left %d Mods= lines, want 1:\n%s", got, joined)
	}
	if got := strings.Count(joined, "WorkshopItems="); got != 1 {
		t.Errorf("Render left %d WorkshopItems= lines, want 1:\n%s", got, joined)
	}
	// Replacement happens at the first directive's position.
	if !strings.HasPrefix(out[0], "Mods=c") {
		t.Errorf("Mods= not rendered in first position: %q", out[0])
	}
}

func TestRenderFiltersEmptyModIDs(t *testing.T) {
	out := Render(nil, []string{"a", "", "b"}, nil, Options{})
	if out[0] != "Mods=a;b\n" {
		t.Errorf("Render mods line = %q, want %q", out[0], "Mods=a;b\n")
	}
}

func TestRenderDoesNotDedupWorkshopIDs(t *testing.T) {
	// Dedup is the reconciliation engine's job; the codec is a pure format
	// transform.
	out := Render(nil, nil, []string{"5", "5"}, Options{})
	if out[1] != "WorkshopItems=5;5\n" {
		t.Errorf("Render workshop line = %q, want %q", out[1], "WorkshopItems=5;5\n")
	}
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		mods []string
		ws   []string
	}{
		{"Plain", Options{}, []string{"ModA", "ModB"}, []string{"1", "2"}},
		{"Legacy prefix", Options{LegacyModPrefix: true}, []string{"ModA", "Mod_B.2"}, []string{"42"}},
		{"Empties filtered", Options{}, []string{"", "ModA", ""}, []string{"7"}},
		{"Custom directives", Options{ModsKey: "Plugins", WorkshopKey: "Packages"}, []string{"p1"}, []string{"9"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rendered := Render(SplitLines(sampleIni), tt.mods, tt.ws, tt.opts)
			gotMods, gotWs := Parse(rendered, tt.opts)

			var wantMods []string
			for _, m := range tt.mods {
				if m != "" {
					wantMods = append(wantMods, m)
				}
			}
			if !reflect.DeepEqual(gotMods, wantMods) {
				t.Errorf("round trip mods = %q, want %q", gotMods, wantMods)
			}
			var wantWs []string
			if len(tt.ws) > 0 {
				wantWs = tt.ws
			}
			if !reflect.DeepEqual(gotWs, wantWs) {
				t.Errorf("round trip workshop ids = %q, want %q", gotWs, wantWs)
			}
		})
	}
}

func TestLegacyPrefixIdempotent(t *testing.T) {
	opts := Options{LegacyModPrefix: true}
	rendered := Render(nil, []string{"ModA"}, nil, opts)
	for i := 0; i < 3; i++ {
		mods, _ := Parse(rendered, opts)
		if !reflect.DeepEqual(mods, []string{"ModA"}) {
			t.Fatalf("pass %d: mods = %q, want [ModA]", i, mods)
		}
		rendered = Render(rendered, mods, nil, opts)
	}
}

func TestSplitLinesNoFinalNewline(t *testing.T) {
	lines := SplitLines("a\nb")
	if !reflect.DeepEqual(lines, []string{"a\n", "b"}) {
		t.Errorf("SplitLines = %q", lines)
	}
	// With both directives already present, nothing is appended and the
	// unterminated final line stays byte-for-byte.
	out := Render(SplitLines("Mods=a\nWorkshopItems=1\nlast"), []string{"m"}, []string{"2"}, Options{})
	if out[len(out)-1] != "last" {
		t.Errorf("unterminated final line mangled: %q", out[len(out)-1])
	}
}

func TestRenderTerminatesFinalLineBeforeAppend(t *testing.T) {
	// Appending a directive after an unterminated final line must not
	// concatenate the two on disk.
	out := Render(SplitLines("Other=1"), []string{"m"}, nil, Options{})
	joined := strings.Join(out, "")
	if !strings.Contains(joined, "Other=1\n") {
		t.Errorf("final opaque line not terminated before append:\n%q", joined)
	}
	mods, _ := Parse(out, Options{})
	if !reflect.DeepEqual(mods, []string{"m"}) {
		t.Errorf("round trip mods = %q, want [m]", mods)
	}
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "servertest.ini")
	if err := os.WriteFile(path, []byte(sampleIni), 0644); err != nil {
		t.Fatal(err)
	}

	if err := WriteFile(path, SplitLines("Mods=x\n")); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}

func TestWriteFileFailureLeavesOriginal(t *testing.T) {
	dir := t.TempDir()
	// Destination is a directory: the rename must fail, the temp file must
	// be cleaned up, and nothing else in the directory may change.
	target := filepath.Join(dir, "destdir")
	if err := os.Mkdir(target, 0755); err != nil {
		t.Fatal(err)
	}

	if err := WriteFile(target, SplitLines("Mods=x\n")); err == nil {
		t.Fatal("WriteFile to a directory target succeeded, want error")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "destdir" {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("directory contents changed after failed write: %v", names)
	}
}

func TestLoadSaveFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "servertest.ini")
	if err := os.WriteFile(path, []byte(sampleIni), 0644); err != nil {
		t.Fatal(err)
	}

	if err := Save(path, []string{"ModA", "ModB"}, []string{"111", "222"}, Options{}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	mods, ws, err := Load(path, Options{})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !reflect.DeepEqual(mods, []string{"ModA", "ModB"}) {
		t.Errorf("mods = %q", mods)
	}
	if !reflect.DeepEqual(ws, []string{"111", "222"}) {
		t.Errorf("workshop ids = %q", ws)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, _, err := Load(filepath.Join(t.TempDir(), "nope.ini"), Options{})
	if err == nil {
		t.Fatal("Load of missing file succeeded, want error")
	}
}
