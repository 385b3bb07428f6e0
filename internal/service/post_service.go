package service

import (
	"context"
	"errors"
	"log/slog"

	"murmur/internal/cache"
	"murmur/internal/models"
	"murmur/internal/observability"
	"murmur/internal/repository"
	"murmur/internal/storage"

	"gorm.io/gorm"
)

const (
	MaxContentLen   = 1000
	MaxAttachments  = 10
	DefaultPageSize = 5
)

// EngagementEvents receives notifications after a successful state change.
// The service only reports; delivery policy belongs to the caller that
// registered the observer.
type EngagementEvents interface {
	PostCreated(ctx context.Context, post *models.Post)
	LikeToggled(ctx context.Context, postID string, liked bool, totalLikes int64)
}

// PostService orchestrates post creation, feed assembly, like toggling, and
// orphan cleanup over the underlying repositories and attachment store.
type PostService struct {
	postRepo    repository.PostRepository
	likeRepo    repository.LikeRepository
	userRepo    repository.UserRepository
	store       storage.AttachmentStore
	events      EngagementEvents
	maxPageSize int
	logger      *observability.Logger
}

// Attachment is one uploaded file accompanying a post.
type Attachment struct {
	Filename string
	Content  []byte
}

type CreatePostInput struct {
	AuthorID    string
	Content     string
	Attachments []Attachment
}

type ListFeedInput struct {
	ViewerID string
	Page     int
	Size     int
}

// FeedPage is one page of the reverse-chronological feed.
type FeedPage struct {
	Items []*models.Post `json:"items"`
	Total int64          `json:"total"`
}

// LikeResult reports the like state after a toggle.
type LikeResult struct {
	Liked      bool  `json:"liked"`
	TotalLikes int64 `json:"totalLikes"`
}

// DeleteResult acknowledges an administrative reset.
type DeleteResult struct {
	Deleted bool `json:"deleted"`
}

// CleanupResult reports how many orphaned posts were removed.
type CleanupResult struct {
	Removed int `json:"removed"`
}

// NewPostService wires a PostService. events may be nil when no observer is
// registered; maxPageSize <= 0 disables the page-size clamp.
func NewPostService(
	postRepo repository.PostRepository,
	likeRepo repository.LikeRepository,
	userRepo repository.UserRepository,
	store storage.AttachmentStore,
	events EngagementEvents,
	maxPageSize int,
) *PostService {
	return &PostService{
		postRepo:    postRepo,
		likeRepo:    likeRepo,
		userRepo:    userRepo,
		store:       store,
		events:      events,
		maxPageSize: maxPageSize,
		logger:      observability.GlobalLogger,
	}
}

// CreatePost stores the attachments, persists the post, and returns the
// enriched view so the caller can render it without a second fetch.
// Attachment files are written before the post record; a record-write failure
// can leave unreferenced files behind, which is accepted and not rolled back.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if in.AuthorID == "" {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	if in.Content == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(in.Content) > MaxContentLen {
		return nil, models.NewValidationError("Content too long (max 1000 characters)")
	}
	if len(in.Attachments) > MaxAttachments {
		return nil, models.NewValidationError("Too many attachments (max 10)")
	}

	var refs []string
	for _, att := range in.Attachments {
		ref, err := s.store.Save(ctx, att.Filename, att.Content)
		if err != nil {
			return nil, models.NewStorageError(err)
		}
		refs = append(refs, ref)
	}

	post := &models.Post{
		Content:  in.Content,
		AuthorID: in.AuthorID,
		Images:   refs,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, models.NewStorageError(err)
	}

	created, err := s.postRepo.GetByID(ctx, post.ID, in.AuthorID)
	if err != nil {
		return nil, models.NewStorageError(err)
	}

	if s.events != nil {
		s.events.PostCreated(ctx, created)
	}
	return created, nil
}

// ListFeed returns one page of posts, newest first, together with the full
// unpaginated count. Pagination does not see a consistent snapshot across
// concurrent writes: a post created between two page fetches may be skipped
// or duplicated across pages.
func (s *PostService) ListFeed(ctx context.Context, in ListFeedInput) (*FeedPage, error) {
	page, size := in.Page, in.Size
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = DefaultPageSize
	}
	if s.maxPageSize > 0 && size > s.maxPageSize {
		size = s.maxPageSize
	}

	var posts []*models.Post
	var err error
	if in.ViewerID == "" && page == 0 && size == DefaultPageSize {
		err = cache.Aside(ctx, cache.FirstFeedKey, &posts, cache.FeedTTL, func() error {
			var fetchErr error
			posts, fetchErr = s.postRepo.List(ctx, size, 0, "")
			return fetchErr
		})
	} else {
		posts, err = s.postRepo.List(ctx, size, page*size, in.ViewerID)
	}
	if err != nil {
		return nil, models.NewStorageError(err)
	}

	total, err := s.postRepo.Count(ctx)
	if err != nil {
		return nil, models.NewStorageError(err)
	}

	if posts == nil {
		posts = make([]*models.Post, 0)
	}
	return &FeedPage{Items: posts, Total: total}, nil
}

// GetPost returns one post enriched with its like count; the viewer's like
// state is included when a viewer identity is supplied.
func (s *PostService) GetPost(ctx context.Context, id, viewerID string) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id, viewerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewStorageError(err)
	}
	return post, nil
}

// ToggleLike flips the viewer's like on a post and returns the new state.
// Two concurrent toggles from the same viewer can both observe "no existing
// like"; the database uniqueness constraint makes the loser surface here as
// a conflict instead of a silent duplicate.
func (s *PostService) ToggleLike(ctx context.Context, postID, viewerID string) (*LikeResult, error) {
	if viewerID == "" {
		return nil, models.NewUnauthorizedError("Authentication required")
	}

	if _, err := s.postRepo.GetByID(ctx, postID, viewerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", postID)
		}
		return nil, models.NewStorageError(err)
	}

	var liked bool
	_, err := s.likeRepo.GetByPostAndUser(ctx, postID, viewerID)
	switch {
	case err == nil:
		if derr := s.likeRepo.Delete(ctx, postID, viewerID); derr != nil {
			return nil, models.NewStorageError(derr)
		}
		liked = false
	case errors.Is(err, gorm.ErrRecordNotFound):
		like := &models.Like{PostID: postID, UserID: viewerID}
		if ierr := s.likeRepo.Insert(ctx, like); ierr != nil {
			if errors.Is(ierr, gorm.ErrDuplicatedKey) {
				return nil, models.NewConflictError("Could not like post")
			}
			return nil, models.NewStorageError(ierr)
		}
		liked = true
	default:
		return nil, models.NewStorageError(err)
	}

	total, err := s.likeRepo.CountByPost(ctx, postID)
	if err != nil {
		return nil, models.NewStorageError(err)
	}

	if s.events != nil {
		s.events.LikeToggled(ctx, postID, liked, total)
	}
	return &LikeResult{Liked: liked, TotalLikes: total}, nil
}

// DeleteAll removes every like and every post, likes first so no dangling
// references survive, then makes a best-effort pass over the attachment
// files the deleted posts referenced.
func (s *PostService) DeleteAll(ctx context.Context) (*DeleteResult, error) {
	posts, err := s.postRepo.ListAll(ctx)
	if err != nil {
		return nil, models.NewStorageError(err)
	}

	if err := s.likeRepo.DeleteAll(ctx); err != nil {
		return nil, models.NewStorageError(err)
	}
	if err := s.postRepo.DeleteAll(ctx); err != nil {
		return nil, models.NewStorageError(err)
	}

	for _, post := range posts {
		s.removeAttachments(ctx, post)
	}
	return &DeleteResult{Deleted: true}, nil
}

// CleanupOrphans removes every post whose author no longer resolves in the
// identity store, together with its likes and attachment files. Each post's
// cleanup is isolated: one failure is recorded and the scan continues.
// Running it twice with no intervening author deletions removes zero posts
// the second time.
func (s *PostService) CleanupOrphans(ctx context.Context) (*CleanupResult, error) {
	posts, err := s.postRepo.ListAll(ctx)
	if err != nil {
		return nil, models.NewStorageError(err)
	}

	removed := 0
	for _, post := range posts {
		_, err := s.userRepo.GetByID(ctx, post.AuthorID)
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			// Resolution failure is not proof the author is gone.
			s.logger.WarnContext(ctx, "orphan cleanup: author lookup failed, skipping post",
				slog.String("post_id", post.ID),
				slog.String("author_id", post.AuthorID),
				slog.String("error", err.Error()),
			)
			continue
		}
		if s.removeOrphan(ctx, post) {
			removed++
		}
	}
	return &CleanupResult{Removed: removed}, nil
}

// removeOrphan deletes one orphaned post: likes first, then attachment files
// (advisory), then the post record. Returns whether the post was removed.
func (s *PostService) removeOrphan(ctx context.Context, post *models.Post) bool {
	if err := s.likeRepo.DeleteByPost(ctx, post.ID); err != nil {
		s.logger.WarnContext(ctx, "orphan cleanup: failed to delete likes",
			slog.String("post_id", post.ID),
			slog.String("error", err.Error()),
		)
		return false
	}

	s.removeAttachments(ctx, post)

	if err := s.postRepo.Delete(ctx, post.ID); err != nil {
		s.logger.WarnContext(ctx, "orphan cleanup: failed to delete post",
			slog.String("post_id", post.ID),
			slog.String("error", err.Error()),
		)
		return false
	}
	observability.OrphanPostsRemoved.Inc()
	return true
}

// removeAttachments is a best-effort pass over a post's attachment files;
// failures are recorded, never propagated.
func (s *PostService) removeAttachments(ctx context.Context, post *models.Post) {
	for _, ref := range post.Images {
		if err := s.store.Remove(ctx, ref); err != nil {
			s.logger.WarnContext(ctx, "attachment cleanup failed",
				slog.String("post_id", post.ID),
				slog.String("ref", ref),
				slog.String("error", err.Error()),
			)
		}
	}
}
