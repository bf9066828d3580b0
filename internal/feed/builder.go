package feed

import (
	"context"
	"errors"

	"quill/internal/models"
	"quill/internal/repository"
)

// ErrNoViewer is returned by BySubscriptions for an anonymous viewer: the
// subscription feed does not exist for them at all, which callers must be
// able to tell apart from a feed that merely has zero posts.
var ErrNoViewer = errors.New("subscription feed requires an authenticated viewer")

// Builder produces the ordered post sequence for each feed kind and slices
// it into pages. All feeds share one absolute order (creation time
// descending, id ascending on ties) so slices are stable across calls.
type Builder struct {
	posts  repository.PostRepository
	groups repository.GroupRepository
	users  repository.UserRepository
	pager  Paginator
}

// NewBuilder creates a feed builder over the given repositories.
func NewBuilder(posts repository.PostRepository, groups repository.GroupRepository, users repository.UserRepository, pageSize int) *Builder {
	return &Builder{
		posts:  posts,
		groups: groups,
		users:  users,
		pager:  NewPaginator(pageSize),
	}
}

// Paginator exposes the builder's paginator, mainly for handlers that need
// the page size.
func (b *Builder) Paginator() Paginator {
	return b.pager
}

// Global returns the requested page of the all-posts feed.
func (b *Builder) Global(ctx context.Context, page int) (*Page, error) {
	total, err := b.posts.Count(ctx)
	if err != nil {
		return nil, err
	}
	totalPages := b.pager.TotalPages(total)
	number := b.pager.Clamp(page, totalPages)

	items, err := b.posts.List(ctx, b.pager.PageSize(), b.pager.Offset(number))
	if err != nil {
		return nil, err
	}
	return b.pager.page(items, number, totalPages, total), nil
}

// ByGroup returns the group and the requested page of its posts.
// An unknown slug yields the repository's NotFound error.
func (b *Builder) ByGroup(ctx context.Context, slug string, page int) (*models.Group, *Page, error) {
	group, err := b.groups.GetBySlug(ctx, slug)
	if err != nil {
		return nil, nil, err
	}

	total, err := b.posts.CountByGroup(ctx, group.ID)
	if err != nil {
		return nil, nil, err
	}
	totalPages := b.pager.TotalPages(total)
	number := b.pager.Clamp(page, totalPages)

	items, err := b.posts.ListByGroup(ctx, group.ID, b.pager.PageSize(), b.pager.Offset(number))
	if err != nil {
		return nil, nil, err
	}
	return group, b.pager.page(items, number, totalPages, total), nil
}

// ByAuthor returns the author and the requested page of their posts.
// An unknown username yields the repository's NotFound error.
func (b *Builder) ByAuthor(ctx context.Context, username string, page int) (*models.User, *Page, error) {
	author, err := b.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, nil, err
	}

	total, err := b.posts.CountByAuthor(ctx, author.ID)
	if err != nil {
		return nil, nil, err
	}
	totalPages := b.pager.TotalPages(total)
	number := b.pager.Clamp(page, totalPages)

	items, err := b.posts.ListByAuthor(ctx, author.ID, b.pager.PageSize(), b.pager.Offset(number))
	if err != nil {
		return nil, nil, err
	}
	return author, b.pager.page(items, number, totalPages, total), nil
}

// BySubscriptions returns the requested page of posts by authors the viewer
// follows. viewerID zero means anonymous and yields ErrNoViewer with a nil
// page, never an empty one.
func (b *Builder) BySubscriptions(ctx context.Context, viewerID uint, page int) (*Page, error) {
	if viewerID == 0 {
		return nil, ErrNoViewer
	}

	total, err := b.posts.CountFollowed(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	totalPages := b.pager.TotalPages(total)
	number := b.pager.Clamp(page, totalPages)

	items, err := b.posts.ListFollowed(ctx, viewerID, b.pager.PageSize(), b.pager.Offset(number))
	if err != nil {
		return nil, err
	}
	return b.pager.page(items, number, totalPages, total), nil
}
