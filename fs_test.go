package hukumu

import "testing"

// The base layouts are underscore-prefixed, which directory embed patterns
// skip; they must still end up in FS or no email template can render.
func TestFSIncludesBaseTemplates(t *testing.T) {
	for _, fp := range []string{
		"assets/templates/email/_base.txt",
		"assets/templates/email/_base.gohtml",
	} {
		if _, err := FS.ReadFile(fp); err != nil {
			t.Errorf("ReadFile(%s): %v", fp, err)
		}
	}
}
