package enums

type Kind string

const (
	KindInvalid Kind = ""

	// KindPosts is the submissions stream (r/all/new).
	KindPosts Kind = "posts"

	// KindComments is the comments stream (r/all/comments).
	KindComments Kind = "comments"
)

// Kinds lists every monitored feed kind.
var Kinds = []Kind{KindPosts, KindComments}

func (k Kind) Valid() bool {
	return k == KindPosts || k == KindComments
}
