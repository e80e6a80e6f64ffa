package auth_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/dalemusser/campushub/internal/app/features/auth"
	userstore "github.com/dalemusser/campushub/internal/app/store/users"
	sysauth "github.com/dalemusser/campushub/internal/app/system/auth"
	"github.com/dalemusser/campushub/internal/app/system/mailer"
	"github.com/dalemusser/campushub/internal/app/system/notify"
	"github.com/dalemusser/campushub/internal/app/system/ranking"
	"github.com/dalemusser/campushub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestHandler(t *testing.T) (*auth.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()

	users := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := users.EnsureIndexes(ctx); err != nil {
		t.Fatalf("EnsureIndexes failed: %v", err)
	}

	tokens, err := sysauth.NewManager(testSecret, time.Hour, logger)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	h := &auth.Handler{
		Users:  users,
		Tokens: tokens,
		Mail:   mailer.New("", "CampusHub", "noreply@example.com", logger), // suppressed
		Rank:   ranking.New(users, nil, logger),
		Notify: notify.New(users, logger),
		Log:    logger,
	}
	return h, testutil.NewFixtures(t, db)
}

func createCredentialedUser(t *testing.T, fixtures *testutil.Fixtures, email, password string) {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fixtures.CreateUser(ctx, "Asha Rao", email)
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("bcrypt failed: %v", err)
	}
	if _, err := fixtures.DB().Collection("users").UpdateByID(ctx, u.ID,
		bson.M{"$set": bson.M{"password_hash": string(hash)}}); err != nil {
		t.Fatalf("failed to set test password: %v", err)
	}
}

func TestHandleSignup(t *testing.T) {
	h, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	body := `{"name":"New Student","email":"new@example.com","password":"correct-horse"}`
	req := httptest.NewRequest("POST", "/auth/signup", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.HandleSignup(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want 201 (%s)", rec.Code, rec.Body.String())
	}

	var u struct {
		IsVerified   bool   `bson:"is_verified"`
		OTPHash      string `bson:"otp_hash"`
		PasswordHash string `bson:"password_hash"`
	}
	if err := fixtures.DB().Collection("users").FindOne(ctx, bson.M{"email": "new@example.com"}).Decode(&u); err != nil {
		t.Fatalf("FindOne failed: %v", err)
	}
	if u.IsVerified {
		t.Error("new accounts must start unverified")
	}
	if u.OTPHash == "" {
		t.Error("expected an OTP hash on the new account")
	}
	if u.PasswordHash == "correct-horse" {
		t.Error("password stored in the clear")
	}
}

func TestHandleSignup_DuplicateEmail(t *testing.T) {
	h, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateUser(ctx, "Existing", "taken@example.com")

	body := `{"name":"New Student","email":"taken@example.com","password":"correct-horse"}`
	req := httptest.NewRequest("POST", "/auth/signup", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.HandleSignup(rec, req)

	if rec.Code != http.StatusConflict {
		t.Errorf("status: got %d, want 409", rec.Code)
	}
}

func TestHandleSignup_ShortPassword(t *testing.T) {
	h, _ := newTestHandler(t)

	body := `{"name":"New Student","email":"new@example.com","password":"short"}`
	req := httptest.NewRequest("POST", "/auth/signup", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.HandleSignup(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", rec.Code)
	}
}

func TestHandleLogin(t *testing.T) {
	h, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	createCredentialedUser(t, fixtures, "asha@example.com", "correct-horse")

	body := `{"identifier":"asha@example.com","password":"correct-horse"}`
	req := httptest.NewRequest("POST", "/auth/login", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.HandleLogin(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200 (%s)", rec.Code, rec.Body.String())
	}

	var resp struct {
		Token string `json:"token"`
		User  struct {
			Email  string `json:"email"`
			Points int    `json:"activity_points"`
		} `json:"user"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if resp.Token == "" {
		t.Error("expected a token")
	}
	if resp.User.Points != ranking.PointsLogin {
		t.Errorf("login points: got %d, want %d", resp.User.Points, ranking.PointsLogin)
	}

	// The award also landed in the database.
	var u struct {
		Profile struct {
			ActivityPoints int `bson:"activity_points"`
		} `bson:"profile"`
	}
	if err := fixtures.DB().Collection("users").FindOne(ctx, bson.M{"email": "asha@example.com"}).Decode(&u); err != nil {
		t.Fatalf("FindOne failed: %v", err)
	}
	if u.Profile.ActivityPoints != ranking.PointsLogin {
		t.Errorf("stored points: got %d, want %d", u.Profile.ActivityPoints, ranking.PointsLogin)
	}
}

func TestHandleLogin_WrongPassword(t *testing.T) {
	h, fixtures := newTestHandler(t)

	createCredentialedUser(t, fixtures, "asha@example.com", "correct-horse")

	body := `{"identifier":"asha@example.com","password":"wrong-horse"}`
	req := httptest.NewRequest("POST", "/auth/login", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.HandleLogin(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want 401", rec.Code)
	}
}

func TestHandleLogin_UnknownUserSameAsWrongPassword(t *testing.T) {
	h, fixtures := newTestHandler(t)

	createCredentialedUser(t, fixtures, "asha@example.com", "correct-horse")

	wrongPass := httptest.NewRecorder()
	h.HandleLogin(wrongPass, httptest.NewRequest("POST", "/auth/login",
		strings.NewReader(`{"identifier":"asha@example.com","password":"nope-nope"}`)))

	unknown := httptest.NewRecorder()
	h.HandleLogin(unknown, httptest.NewRequest("POST", "/auth/login",
		strings.NewReader(`{"identifier":"ghost@example.com","password":"nope-nope"}`)))

	// The endpoint must not reveal which emails have accounts.
	if wrongPass.Code != unknown.Code {
		t.Errorf("status differs: %d vs %d", wrongPass.Code, unknown.Code)
	}
	if wrongPass.Body.String() != unknown.Body.String() {
		t.Error("response body differs between unknown user and wrong password")
	}
}

func TestHandleLogin_Unverified(t *testing.T) {
	h, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	createCredentialedUser(t, fixtures, "pending@example.com", "correct-horse")
	if _, err := fixtures.DB().Collection("users").UpdateOne(ctx,
		bson.M{"email": "pending@example.com"},
		bson.M{"$set": bson.M{"is_verified": false}}); err != nil {
		t.Fatalf("failed to unverify test user: %v", err)
	}

	body := `{"identifier":"pending@example.com","password":"correct-horse"}`
	rec := httptest.NewRecorder()
	h.HandleLogin(rec, httptest.NewRequest("POST", "/auth/login", strings.NewReader(body)))

	if rec.Code != http.StatusConflict {
		t.Errorf("status: got %d, want 409", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "invalid_state") {
		t.Errorf("expected invalid_state kind, got %s", rec.Body.String())
	}
}

func TestHandleAdminLogin_NonAdmin(t *testing.T) {
	h, fixtures := newTestHandler(t)

	createCredentialedUser(t, fixtures, "plain@example.com", "correct-horse")

	body := `{"identifier":"plain@example.com","password":"correct-horse"}`
	rec := httptest.NewRecorder()
	h.HandleAdminLogin(rec, httptest.NewRequest("POST", "/auth/admin/login", strings.NewReader(body)))

	if rec.Code != http.StatusForbidden {
		t.Errorf("status: got %d, want 403", rec.Code)
	}
}

func TestHandleAdminLogin_Admin(t *testing.T) {
	h, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := fixtures.CreateAdmin(ctx, "Site Admin", "admin@example.com")
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("bcrypt failed: %v", err)
	}
	if _, err := fixtures.DB().Collection("users").UpdateByID(ctx, admin.ID,
		bson.M{"$set": bson.M{"password_hash": string(hash)}}); err != nil {
		t.Fatalf("failed to set test password: %v", err)
	}

	body := `{"identifier":"admin@example.com","password":"correct-horse"}`
	rec := httptest.NewRecorder()
	h.HandleAdminLogin(rec, httptest.NewRequest("POST", "/auth/admin/login", strings.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200 (%s)", rec.Code, rec.Body.String())
	}

	// Admin login stamps last-active but never awards points.
	var u struct {
		Admin struct {
			LastActive *time.Time `bson:"last_active"`
		} `bson:"admin"`
		Profile struct {
			ActivityPoints int `bson:"activity_points"`
		} `bson:"profile"`
	}
	if err := fixtures.DB().Collection("users").FindOne(ctx, bson.M{"_id": admin.ID}).Decode(&u); err != nil {
		t.Fatalf("FindOne failed: %v", err)
	}
	if u.Admin.LastActive == nil {
		t.Error("expected last_active to be stamped")
	}
	if u.Profile.ActivityPoints != 0 {
		t.Errorf("admin login awarded %d points", u.Profile.ActivityPoints)
	}
}

func TestHandleVerifyOTP_BadCode(t *testing.T) {
	h, _ := newTestHandler(t)

	signup := `{"name":"New Student","email":"new@example.com","password":"correct-horse"}`
	rec := httptest.NewRecorder()
	h.HandleSignup(rec, httptest.NewRequest("POST", "/auth/signup", strings.NewReader(signup)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup failed: %d", rec.Code)
	}

	verify := `{"email":"new@example.com","otp":"000000"}`
	rec = httptest.NewRecorder()
	h.HandleVerifyOTP(rec, httptest.NewRequest("POST", "/auth/verify-otp", strings.NewReader(verify)))

	// The real code is random, so all-zeros is wrong with overwhelming odds.
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", rec.Code)
	}
}

func TestHandleUsernameAvailable(t *testing.T) {
	h, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fixtures.CreateUser(ctx, "Asha", "asha@example.com")
	if err := h.Users.SetUsername(ctx, u.ID, "asha"); err != nil {
		t.Fatalf("SetUsername failed: %v", err)
	}

	rec := httptest.NewRecorder()
	h.HandleUsernameAvailable(rec, httptest.NewRequest("GET", "/auth/username-available?username=asha", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	var resp struct {
		Available bool `json:"available"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if resp.Available {
		t.Error("taken username reported available")
	}

	rec = httptest.NewRecorder()
	h.HandleUsernameAvailable(rec, httptest.NewRequest("GET", "/auth/username-available?username=free", nil))
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if !resp.Available {
		t.Error("free username reported taken")
	}
}

func TestHandleStudentIDAvailable(t *testing.T) {
	h, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fixtures.CreateUser(ctx, "Asha", "asha@example.com")
	if _, err := fixtures.DB().Collection("users").UpdateByID(ctx, u.ID,
		bson.M{"$set": bson.M{"profile.student_id": "S-100"}}); err != nil {
		t.Fatalf("seed student id: %v", err)
	}

	var resp struct {
		Available bool `json:"available"`
	}
	rec := httptest.NewRecorder()
	h.HandleStudentIDAvailable(rec, httptest.NewRequest("GET", "/auth/student-id-available?student_id=S-100", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if resp.Available {
		t.Error("registered student ID reported available")
	}

	rec = httptest.NewRecorder()
	h.HandleStudentIDAvailable(rec, httptest.NewRequest("GET", "/auth/student-id-available?student_id=S-999", nil))
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if !resp.Available {
		t.Error("unregistered student ID reported taken")
	}
}

func TestRoutes_RequireSignedIn(t *testing.T) {
	h, _ := newTestHandler(t)

	router := auth.Routes(h)
	req := httptest.NewRequest("POST", "/username", strings.NewReader(`{"username":"asha"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status without token: got %d, want 401", rec.Code)
	}
}
