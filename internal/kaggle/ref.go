package kaggle

import (
	"fmt"
	"strings"
)

// Ref identifies a kernel or dataset as owner/slug.
type Ref struct {
	Owner string
	Slug  string
}

// ParseRef parses an "owner/slug" string.
func ParseRef(s string) (Ref, error) {
	owner, slug, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok || owner == "" || slug == "" || strings.Contains(slug, "/") {
		return Ref{}, fmt.Errorf("invalid reference %q: expected owner/slug", s)
	}
	return Ref{Owner: owner, Slug: slug}, nil
}

func (r Ref) String() string {
	return r.Owner + "/" + r.Slug
}

// KernelURL returns the web page of a kernel ref.
func KernelURL(ref string) string {
	return "https://www.kaggle.com/code/" + ref
}

// DatasetURL returns the web page of a dataset ref.
func DatasetURL(ref string) string {
	return "https://www.kaggle.com/datasets/" + ref
}
