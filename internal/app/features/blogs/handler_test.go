package blogs_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/dalemusser/campushub/internal/app/features/blogs"
	blogstore "github.com/dalemusser/campushub/internal/app/store/blogs"
	clubstore "github.com/dalemusser/campushub/internal/app/store/clubs"
	userstore "github.com/dalemusser/campushub/internal/app/store/users"
	"github.com/dalemusser/campushub/internal/app/system/notify"
	"github.com/dalemusser/campushub/internal/app/system/ranking"
	"github.com/dalemusser/campushub/internal/domain/models"
	"github.com/dalemusser/campushub/internal/testutil"
)

func blogFromFixture(author primitive.ObjectID, draft bool) models.Blog {
	return models.Blog{
		Title:       "Fixture Post",
		Content:     "<p>fixture content</p>",
		Author:      author,
		IsDraft:     draft,
		IsPublished: !draft,
	}
}

func newTestHandler(t *testing.T) (*blogs.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()

	users := userstore.New(db)
	h := &blogs.Handler{
		Blogs:  blogstore.New(db),
		Users:  users,
		Clubs:  clubstore.New(db),
		DB:     db,
		Rank:   ranking.New(users, nil, logger),
		Notify: notify.New(users, logger),
		Log:    logger,
	}
	return h, testutil.NewFixtures(t, db)
}

func TestHandleCreate_PublishAwardsPoints(t *testing.T) {
	h, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	author := fixtures.CreateUser(ctx, "Asha", "asha@example.com")

	body := `{"title":"My Summer Internship","content":"<p>Lessons learned.</p>","tags":["Internship"]}`
	req := testutil.WithUser(httptest.NewRequest("POST", "/blogs", strings.NewReader(body)), author)
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want 201 (%s)", rec.Code, rec.Body.String())
	}

	u, err := h.Users.GetByID(ctx, author.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if u.Profile.ActivityPoints != ranking.PointsBlogPublish {
		t.Errorf("points: got %d, want %d", u.Profile.ActivityPoints, ranking.PointsBlogPublish)
	}
	if len(u.BlogsAuthored) != 1 {
		t.Errorf("blogs authored: got %d, want 1", len(u.BlogsAuthored))
	}
}

func TestHandleCreate_DraftAwardsNothing(t *testing.T) {
	h, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	author := fixtures.CreateUser(ctx, "Asha", "asha@example.com")

	body := `{"title":"Work In Progress","content":"<p>tbd</p>","is_draft":true}`
	req := testutil.WithUser(httptest.NewRequest("POST", "/blogs", strings.NewReader(body)), author)
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status: got %d (%s)", rec.Code, rec.Body.String())
	}

	u, err := h.Users.GetByID(ctx, author.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if u.Profile.ActivityPoints != 0 {
		t.Errorf("draft awarded %d points", u.Profile.ActivityPoints)
	}
}

func TestHandleCreate_SanitizesContent(t *testing.T) {
	h, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	author := fixtures.CreateUser(ctx, "Asha", "asha@example.com")

	body := `{"title":"Sneaky Post","content":"<p>hi</p><script>alert(1)</script>"}`
	req := testutil.WithUser(httptest.NewRequest("POST", "/blogs", strings.NewReader(body)), author)
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status: got %d (%s)", rec.Code, rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "<script>") {
		t.Error("script tag survived sanitization")
	}
}

func TestHandleCreate_UnknownTag(t *testing.T) {
	h, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	author := fixtures.CreateUser(ctx, "Asha", "asha@example.com")

	body := `{"title":"Mislabeled","content":"<p>x</p>","tags":["Gossip"]}`
	req := testutil.WithUser(httptest.NewRequest("POST", "/blogs", strings.NewReader(body)), author)
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", rec.Code)
	}
}

func TestHandleCreate_ClubBadgeRequiresMembership(t *testing.T) {
	h, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	club := fixtures.CreateClub(ctx, "Writers Club", primitive.NewObjectID())
	outsider := fixtures.CreateUser(ctx, "Outsider", "out@example.com")

	body := fmt.Sprintf(`{"title":"Badged Post","content":"<p>x</p>","club_badge":%q}`, club.ID.Hex())
	req := testutil.WithUser(httptest.NewRequest("POST", "/blogs", strings.NewReader(body)), outsider)
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status: got %d, want 403", rec.Code)
	}
}

func TestHandleGet_DraftOnlyVisibleToAuthor(t *testing.T) {
	h, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	author := fixtures.CreateUser(ctx, "Asha", "asha@example.com")
	reader := fixtures.CreateUser(ctx, "Reader", "reader@example.com")

	draft, err := h.Blogs.Create(ctx, blogFromFixture(author.ID, true))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	path := "/blogs/" + draft.ID.Hex()

	// The author sees their own draft.
	req := testutil.WithUser(testutil.WithChiURLParam(httptest.NewRequest("GET", path, nil), "blogID", draft.ID.Hex()), author)
	rec := httptest.NewRecorder()
	h.HandleGet(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("author read: got %d, want 200", rec.Code)
	}

	// Everyone else gets a 404, not a 403, so drafts stay unlisted.
	req = testutil.WithUser(testutil.WithChiURLParam(httptest.NewRequest("GET", path, nil), "blogID", draft.ID.Hex()), reader)
	rec = httptest.NewRecorder()
	h.HandleGet(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("non-author read: got %d, want 404", rec.Code)
	}
}

func TestHandleGet_BumpsViewCount(t *testing.T) {
	h, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	author := fixtures.CreateUser(ctx, "Asha", "asha@example.com")
	blog := fixtures.CreateBlog(ctx, "Published Post", author.ID)

	req := testutil.WithChiURLParam(httptest.NewRequest("GET", "/blogs/"+blog.ID.Hex(), nil), "blogID", blog.ID.Hex())
	rec := httptest.NewRecorder()
	h.HandleGet(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	var resp struct {
		ViewCount int `json:"view_count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if resp.ViewCount != 1 {
		t.Errorf("view count: got %d, want 1", resp.ViewCount)
	}
}

func TestHandleVote(t *testing.T) {
	h, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	author := fixtures.CreateUser(ctx, "Asha", "asha@example.com")
	voter := fixtures.CreateUser(ctx, "Voter", "voter@example.com")
	blog := fixtures.CreateBlog(ctx, "Votable", author.ID)

	vote := func(direction string) *httptest.ResponseRecorder {
		body := fmt.Sprintf(`{"direction":%q}`, direction)
		req := httptest.NewRequest("POST", "/blogs/"+blog.ID.Hex()+"/vote", strings.NewReader(body))
		req = testutil.WithUser(testutil.WithChiURLParam(req, "blogID", blog.ID.Hex()), voter)
		rec := httptest.NewRecorder()
		h.HandleVote(rec, req)
		return rec
	}

	if rec := vote("up"); rec.Code != http.StatusOK {
		t.Fatalf("upvote: got %d (%s)", rec.Code, rec.Body.String())
	}
	// Switching direction moves the single vote.
	if rec := vote("down"); rec.Code != http.StatusOK {
		t.Fatalf("downvote: got %d", rec.Code)
	}

	got, err := h.Blogs.GetByID(ctx, blog.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if len(got.Upvotes) != 0 || len(got.Downvotes) != 1 {
		t.Errorf("after switch: up=%d down=%d", len(got.Upvotes), len(got.Downvotes))
	}

	if rec := vote("sideways"); rec.Code != http.StatusBadRequest {
		t.Errorf("bad direction: got %d, want 400", rec.Code)
	}
}

func TestHandlePublish(t *testing.T) {
	h, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	author := fixtures.CreateUser(ctx, "Asha", "asha@example.com")
	draft, err := h.Blogs.Create(ctx, blogFromFixture(author.ID, true))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	req := httptest.NewRequest("POST", "/blogs/"+draft.ID.Hex()+"/publish", nil)
	req = testutil.WithUser(testutil.WithChiURLParam(req, "blogID", draft.ID.Hex()), author)
	rec := httptest.NewRecorder()
	h.HandlePublish(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d (%s)", rec.Code, rec.Body.String())
	}

	u, err := h.Users.GetByID(ctx, author.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if u.Profile.ActivityPoints != ranking.PointsBlogPublish {
		t.Errorf("publish points: got %d, want %d", u.Profile.ActivityPoints, ranking.PointsBlogPublish)
	}

	// Publishing an already published blog is a lifecycle error.
	rec = httptest.NewRecorder()
	req = httptest.NewRequest("POST", "/blogs/"+draft.ID.Hex()+"/publish", nil)
	req = testutil.WithUser(testutil.WithChiURLParam(req, "blogID", draft.ID.Hex()), author)
	h.HandlePublish(rec, req)
	if rec.Code != http.StatusConflict {
		t.Errorf("second publish: got %d, want 409", rec.Code)
	}
}

func TestHandleList_ClubAndAuthorFilters(t *testing.T) {
	h, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := fixtures.CreateUser(ctx, "Alice", "alice@example.com")
	bob := fixtures.CreateUser(ctx, "Bob", "bob@example.com")
	club := fixtures.CreateClub(ctx, "Robotics Club", alice.ID)

	badged := blogFromFixture(alice.ID, false)
	badged.ClubBadge = &club.ID
	if _, err := h.Blogs.Create(ctx, badged); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := h.Blogs.Create(ctx, blogFromFixture(bob.ID, false)); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	// Drafts never surface on public listings, filtered or not.
	if _, err := h.Blogs.Create(ctx, blogFromFixture(alice.ID, true)); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	listLen := func(query string) int {
		t.Helper()
		rec := httptest.NewRecorder()
		h.HandleList(rec, httptest.NewRequest("GET", "/blogs"+query, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("status for %q: got %d", query, rec.Code)
		}
		var resp struct {
			Blogs []models.Blog `json:"blogs"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("invalid JSON body: %v", err)
		}
		return len(resp.Blogs)
	}

	if n := listLen(""); n != 2 {
		t.Errorf("unfiltered: got %d published, want 2", n)
	}
	if n := listLen("?club=" + club.ID.Hex()); n != 1 {
		t.Errorf("club filter: got %d, want 1", n)
	}
	if n := listLen("?author=" + alice.ID.Hex()); n != 1 {
		t.Errorf("author filter: got %d, want 1", n)
	}

	rec := httptest.NewRecorder()
	h.HandleList(rec, httptest.NewRequest("GET", "/blogs?club=not-hex", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad club filter: got %d, want 400", rec.Code)
	}
}
