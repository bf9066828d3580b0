package models

// EditDecision is the outcome of an ownership check on a post mutation.
type EditDecision int

const (
	// EditDenied means the viewer is not the post's author.
	EditDenied EditDecision = iota
	// EditAuthorized means the viewer owns the post.
	EditAuthorized
)

// AuthorizeEdit decides whether viewerID may edit the given post.
// Only the stored author is authorized; everyone else is denied.
func AuthorizeEdit(post *Post, viewerID uint) EditDecision {
	if post == nil || viewerID == 0 {
		return EditDenied
	}
	if post.AuthorID == viewerID {
		return EditAuthorized
	}
	return EditDenied
}
