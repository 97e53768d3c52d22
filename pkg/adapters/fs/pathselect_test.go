package fs

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/aretw0/mirror/pkg/core"
)

func TestRuleSelector(t *testing.T) {
	root := t.TempDir()
	sel := &RuleSelector{
		Root:        root,
		DefaultExt:  ".md",
		Serializers: DefaultSerializers(false),
		Rules: []PathRule{
			{Match: "$:/**", Dir: "system"},
			{Tag: "journal", Dir: "journal"},
		},
	}

	cases := []struct {
		name string
		doc  core.Document
		want string
	}{
		{"Default", core.Document{ID: "Hello"}, "Hello.md"},
		{"Known Extension", core.Document{ID: "data.json"}, "data.json"},
		{"Unknown Extension", core.Document{ID: "v1.2"}, "v1.2.md"},
		{"Nested ID", core.Document{ID: "a/b"}, filepath.Join("a", "b.md")},
		{"Match Rule", core.Document{ID: "$:/config"}, filepath.Join("system", "$_", "config.md")},
		{"Tag Rule", core.Document{ID: "Monday", Metadata: core.Metadata{"tags": []any{"journal"}}}, filepath.Join("journal", "Monday.md")},
		{"Reserved Characters", core.Document{ID: `what? "x"`}, "what_ _x_.md"},
		{"Traversal", core.Document{ID: "../../etc/passwd"}, filepath.Join("_", "_", "etc", "passwd.md")},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := sel.ChoosePath(tc.doc, NewIndex())
			if err != nil {
				t.Fatalf("ChoosePath failed: %v", err)
			}
			if want := filepath.Join(root, tc.want); got != want {
				t.Errorf("got %s, want %s", got, want)
			}
		})
	}
}

func TestRuleSelector_Unique(t *testing.T) {
	root := t.TempDir()
	sel := &RuleSelector{Root: root, Serializers: DefaultSerializers(false)}

	idx := NewIndex()
	_ = idx.Put(FileRecord{DocumentID: "other", Path: filepath.Join(root, "Note.md")})
	writeTestFile(t, filepath.Join(root, "Note 1.md"), "untracked")

	got, err := sel.ChoosePath(core.Document{ID: "Note"}, idx)
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(root, "Note 2.md"); got != want {
		t.Errorf("got %s, want %s", got, want)
	}
	if !strings.HasPrefix(got, root) {
		t.Error("path escaped root")
	}
}
