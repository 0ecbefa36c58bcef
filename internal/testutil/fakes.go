// Package testutil contains in-memory implementations of the repo interfaces
// and fixtures shared by service and delivery tests.
package testutil

import (
	"bytes"
	"context"
	"ecourse-admin/internal/entity"
	"ecourse-admin/internal/repo"
	"errors"
	"image"
	"image/color"
	"image/png"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrInjected = errors.New("injected failure")

// CourseRepo is an in-memory repo.Course.
type CourseRepo struct {
	mu      sync.Mutex
	Courses map[string]*entity.Course
	AddErr  error
	EditErr error
	DelErr  error
	ListErr error
	Deletes int

	// BeforeEdit runs once at the start of the next EditCourse, outside the lock.
	BeforeEdit func()
}

func NewCourseRepo() *CourseRepo {
	return &CourseRepo{Courses: map[string]*entity.Course{}}
}

func (r *CourseRepo) ListCourses(_ context.Context, query *entity.ListQuery) ([]*entity.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ListErr != nil {
		return nil, r.ListErr
	}
	if query != nil && query.Sort != "" && query.Sort != "name" && query.Sort != "created_at" {
		return nil, repo.ErrUnknownColumn
	}
	courses := make([]*entity.Course, 0, len(r.Courses))
	for _, course := range r.Courses {
		if query != nil && query.Filter != "" &&
			!strings.Contains(strings.ToLower(course.Name+" "+course.Author), strings.ToLower(query.Filter)) {
			continue
		}
		copied := *course
		courses = append(courses, &copied)
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].CreatedAt.Before(courses[j].CreatedAt) })
	return courses, nil
}

func (r *CourseRepo) GetCourse(_ context.Context, id string) (*entity.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	course, ok := r.Courses[id]
	if !ok {
		return nil, repo.ErrCourseNotFound
	}
	copied := *course
	return &copied, nil
}

func (r *CourseRepo) AddCourse(_ context.Context, course *entity.Course) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.AddErr != nil {
		return "", r.AddErr
	}
	copied := *course
	copied.ID = uuid.New().String()
	copied.CreatedAt = time.Now()
	copied.UpdatedAt = copied.CreatedAt
	r.Courses[copied.ID] = &copied
	return copied.ID, nil
}

func (r *CourseRepo) EditCourse(_ context.Context, course *entity.Course, previousPhotoLink *string) error {
	r.mu.Lock()
	hook := r.BeforeEdit
	r.BeforeEdit = nil
	r.mu.Unlock()
	if hook != nil {
		hook()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.EditErr != nil {
		return r.EditErr
	}
	current, ok := r.Courses[course.ID]
	if !ok {
		return repo.ErrCourseNotFound
	}
	copied := *course
	if previousPhotoLink == nil {
		copied.PhotoLink = current.PhotoLink
	} else if current.PhotoLink != *previousPhotoLink {
		return repo.ErrCourseConflict
	}
	copied.CreatedAt = current.CreatedAt
	copied.UpdatedAt = time.Now()
	r.Courses[course.ID] = &copied
	return nil
}

func (r *CourseRepo) DeleteCourse(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Deletes++
	if r.DelErr != nil {
		return r.DelErr
	}
	if _, ok := r.Courses[id]; !ok {
		return repo.ErrCourseNotFound
	}
	delete(r.Courses, id)
	return nil
}

func (r *CourseRepo) ListPhotoLinks(_ context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ListErr != nil {
		return nil, r.ListErr
	}
	links := make([]string, 0, len(r.Courses))
	for _, course := range r.Courses {
		if course.PhotoLink != "" {
			links = append(links, course.PhotoLink)
		}
	}
	return links, nil
}

// Put stores a course directly, bypassing AddErr.
func (r *CourseRepo) Put(course *entity.Course) {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *course
	r.Courses[course.ID] = &copied
}

func (r *CourseRepo) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.Courses)
}

type storedBlob struct {
	data         []byte
	contentType  string
	lastModified time.Time
}

// BlobStore is an in-memory repo.Blob with public links under BaseURL.
type BlobStore struct {
	mu      sync.Mutex
	BaseURL string
	blobs   map[string]storedBlob
	PutErr  error
	DelErr  error
	Puts    int
	Deletes int
}

func NewBlobStore() *BlobStore {
	return &BlobStore{
		BaseURL: "http://blob.test/ecourse-pictures",
		blobs:   map[string]storedBlob{},
	}
}

func (b *BlobStore) PutBlob(_ context.Context, key string, data []byte, contentType string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Puts++
	if b.PutErr != nil {
		return "", b.PutErr
	}
	b.blobs[key] = storedBlob{data: append([]byte(nil), data...), contentType: contentType, lastModified: time.Now()}
	return b.BaseURL + "/" + key, nil
}

func (b *BlobStore) DeleteBlob(_ context.Context, keyOrURL string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Deletes++
	if b.DelErr != nil {
		return b.DelErr
	}
	key, err := b.keyOf(keyOrURL)
	if err != nil {
		return err
	}
	delete(b.blobs, key)
	return nil
}

func (b *BlobStore) BlobExists(_ context.Context, keyOrURL string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	key, err := b.keyOf(keyOrURL)
	if err != nil {
		return false, err
	}
	_, ok := b.blobs[key]
	return ok, nil
}

func (b *BlobStore) ListBlobs(_ context.Context) ([]*entity.BlobInfo, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	blobs := make([]*entity.BlobInfo, 0, len(b.blobs))
	for key, blob := range b.blobs {
		blobs = append(blobs, &entity.BlobInfo{
			Key:          key,
			URL:          b.BaseURL + "/" + key,
			Size:         int64(len(blob.data)),
			LastModified: blob.lastModified,
		})
	}
	return blobs, nil
}

// Store puts a blob with an explicit modification time and returns its public link.
func (b *BlobStore) Store(key string, data []byte, lastModified time.Time) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.blobs[key] = storedBlob{data: data, lastModified: lastModified}
	return b.BaseURL + "/" + key
}

func (b *BlobStore) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.blobs)
}

// Get returns the bytes and content type stored under a key or public link.
func (b *BlobStore) Get(keyOrURL string) ([]byte, string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	key, err := b.keyOf(keyOrURL)
	if err != nil {
		return nil, "", false
	}
	blob, ok := b.blobs[key]
	return blob.data, blob.contentType, ok
}

func (b *BlobStore) KeyOf(keyOrURL string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.keyOf(keyOrURL)
}

// SetBaseURL changes the prefix of links returned from now on; stored keys stay.
func (b *BlobStore) SetBaseURL(baseURL string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.BaseURL = baseURL
}

func (b *BlobStore) keyOf(keyOrURL string) (string, error) {
	if !strings.Contains(keyOrURL, "://") {
		return keyOrURL, nil
	}
	key, ok := strings.CutPrefix(keyOrURL, b.BaseURL+"/")
	if !ok {
		return "", repo.ErrForeignBlob
	}
	return key, nil
}

// Compressor is a repo.Compressor that halves the input.
type Compressor struct {
	mu          sync.Mutex
	ContentType string
	Err         error
	Calls       int
}

func NewCompressor() *Compressor {
	return &Compressor{ContentType: "image/png"}
}

func (c *Compressor) Compress(_ context.Context, data []byte) (*entity.CompressedPicture, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Calls++
	if c.Err != nil {
		return nil, c.Err
	}
	return &entity.CompressedPicture{
		Data:        append([]byte(nil), data[:(len(data)+1)/2]...),
		ContentType: c.ContentType,
	}, nil
}

// Events records published course events.
type Events struct {
	mu        sync.Mutex
	Published []*entity.CourseEvent
	Incoming  chan *entity.CourseEvent
}

func NewEvents() *Events {
	return &Events{Incoming: make(chan *entity.CourseEvent, 16)}
}

func (e *Events) PublishCourseEvent(_ context.Context, event *entity.CourseEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Published = append(e.Published, event)
	return nil
}

func (e *Events) SubscribeCourseEvents(_ context.Context) (<-chan *entity.CourseEvent, error) {
	return e.Incoming, nil
}

func (e *Events) Types() []entity.CourseEventType {
	e.mu.Lock()
	defer e.mu.Unlock()
	types := make([]entity.CourseEventType, 0, len(e.Published))
	for _, event := range e.Published {
		types = append(types, event.Type)
	}
	return types
}

// SubmissionRepo is an in-memory repo.Submission.
type SubmissionRepo struct {
	mu          sync.Mutex
	Submissions map[string]*entity.Submission
}

func NewSubmissionRepo(submissions ...*entity.Submission) *SubmissionRepo {
	r := &SubmissionRepo{Submissions: map[string]*entity.Submission{}}
	for _, s := range submissions {
		r.Submissions[s.ID] = s
	}
	return r
}

func (r *SubmissionRepo) ListSubmissions(_ context.Context, query *entity.ListQuery) ([]*entity.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	submissions := make([]*entity.Submission, 0, len(r.Submissions))
	for _, s := range r.Submissions {
		if query != nil && query.Filter != "" && !strings.Contains(s.Email, query.Filter) {
			continue
		}
		submissions = append(submissions, s)
	}
	sort.Slice(submissions, func(i, j int) bool { return submissions[i].Email < submissions[j].Email })
	return submissions, nil
}

func (r *SubmissionRepo) GetSubmission(_ context.Context, id string) (*entity.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.Submissions[id]
	if !ok {
		return nil, repo.ErrSubmissionNotFound
	}
	return s, nil
}

func (r *SubmissionRepo) DeleteSubmission(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.Submissions[id]; !ok {
		return repo.ErrSubmissionNotFound
	}
	delete(r.Submissions, id)
	return nil
}

// MemberRepo is a repo.Member returning fixed rows.
type MemberRepo struct {
	Rows []map[string]any
	Err  error
}

func (r *MemberRepo) ListMembers(_ context.Context) ([]map[string]any, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	if r.Rows == nil {
		return []map[string]any{}, nil
	}
	return r.Rows, nil
}

// PNG returns a valid PNG image of roughly the requested size in bytes.
func PNG(approxSize int) []byte {
	side := 8
	for side*side*4 < approxSize {
		side++
	}
	img := image.NewNRGBA(image.Rect(0, 0, side, side))
	// псевдослучайный шум, чтобы PNG не сжимался до пары байт
	seed := uint32(2463534242)
	for i := range img.Pix {
		seed ^= seed << 13
		seed ^= seed >> 17
		seed ^= seed << 5
		img.Pix[i] = uint8(seed)
	}
	img.Set(0, 0, color.NRGBA{R: 255, A: 255})
	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}
