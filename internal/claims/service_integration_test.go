package claims

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	migrationsdb "github.com/bothubai/bothub/db"
	"github.com/bothubai/bothub/internal/bots"
	"github.com/bothubai/bothub/internal/config"
	"github.com/bothubai/bothub/internal/db/sqlc"
	"github.com/bothubai/bothub/internal/feishu"
	"github.com/bothubai/bothub/internal/grants"
	"github.com/bothubai/bothub/internal/users"
)

// The tests below exercise the full claim state machine against a real
// database. They are skipped unless TEST_POSTGRES_DSN points at a
// disposable Postgres instance.

func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set")
	}

	source, err := fs.Sub(migrationsdb.MigrationsFS, "migrations")
	if err != nil {
		t.Fatalf("migrations fs: %v", err)
	}
	driver, err := iofs.New(source, ".")
	if err != nil {
		t.Fatalf("migration source: %v", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", driver, dsn)
	if err != nil {
		t.Fatalf("migrate init: %v", err)
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		t.Fatalf("migrate up: %v", err)
	}
	m.Close()

	pool, err := pgxpool.New(t.Context(), dsn)
	if err != nil {
		t.Fatalf("pool: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

type fakeVerifier struct {
	idents map[string]feishu.Identity
	rel    feishu.Relationship
}

func (f *fakeVerifier) ResolveIdentity(_ context.Context, authCode string) (feishu.Identity, error) {
	ident, ok := f.idents[authCode]
	if !ok {
		return feishu.Identity{}, feishu.ErrUpstreamAuth
	}
	return ident, nil
}

func (f *fakeVerifier) VerifyRelationship(context.Context, string, string) feishu.Relationship {
	return f.rel
}

type recordingNotifier struct {
	mu        sync.Mutex
	requested []Request
	decided   []Request
}

func (n *recordingNotifier) ClaimRequested(req Request, _ string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.requested = append(n.requested, req)
}

func (n *recordingNotifier) ClaimDecided(req Request) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.decided = append(n.decided, req)
}

type claimFixture struct {
	pool     *pgxpool.Pool
	queries  *sqlc.Queries
	bots     *bots.Service
	grants   *grants.Service
	claims   *Service
	notifier *recordingNotifier
	verifier *fakeVerifier
}

func newClaimFixture(t *testing.T) *claimFixture {
	t.Helper()
	pool := testPool(t)
	queries := sqlc.New(pool)
	usersSvc := users.NewService(nil, queries)
	verifier := &fakeVerifier{idents: map[string]feishu.Identity{}}
	notifier := &recordingNotifier{}
	return &claimFixture{
		pool:     pool,
		queries:  queries,
		bots:     bots.NewService(nil, queries, config.ClaimConfig{FrontendURL: "http://localhost:3000"}),
		grants:   grants.NewService(nil, queries),
		claims:   NewService(nil, pool, queries, usersSvc, verifier, notifier),
		notifier: notifier,
		verifier: verifier,
	}
}

func (f *claimFixture) addIdentity(authCode, name string) {
	f.verifier.idents[authCode] = feishu.Identity{
		UserID: "fu_" + authCode,
		OpenID: "ou_" + authCode,
		Name:   name,
	}
}

func (f *claimFixture) registerBot(t *testing.T) bots.Registration {
	t.Helper()
	reg, err := f.bots.Register(t.Context(), bots.RegisterRequest{
		BotID:   "bot-" + uuid.NewString(),
		BotName: "Claim Test Bot",
	})
	if err != nil {
		t.Fatalf("register bot: %v", err)
	}
	return reg
}

func TestOwnerClaimLifecycle(t *testing.T) {
	f := newClaimFixture(t)
	f.addIdentity("code-alice", "Alice")

	reg := f.registerBot(t)
	req, err := f.claims.Create(t.Context(), CreateRequest{
		AuthCode:  "code-alice",
		ClaimCode: reg.ClaimCode,
	})
	if err != nil {
		t.Fatalf("owner claim: %v", err)
	}
	if req.ClaimType != TypeOwner || req.Status != StatusApproved {
		t.Fatalf("owner claim should auto-approve, got %s/%s", req.ClaimType, req.Status)
	}
	if !req.FeishuVerified {
		t.Fatal("bot without app binding must be trivially verified")
	}

	bot, err := f.bots.Get(t.Context(), reg.Bot.BotID)
	if err != nil {
		t.Fatalf("get bot: %v", err)
	}
	if bot.Status != bots.StatusClaimed {
		t.Fatalf("bot status = %s, want claimed", bot.Status)
	}
	if bot.OwnerID != req.RequesterID {
		t.Fatalf("owner = %s, want %s", bot.OwnerID, req.RequesterID)
	}
	if bot.ClaimCode != "" {
		t.Fatal("claim code must be cleared after a successful claim")
	}

	// The code is single-use.
	_, err = f.claims.Create(t.Context(), CreateRequest{
		AuthCode:  "code-alice",
		ClaimCode: reg.ClaimCode,
	})
	if !errors.Is(err, ErrCodeNotFound) {
		t.Fatalf("reused claim code: err = %v, want ErrCodeNotFound", err)
	}
}

func TestHireClaimApproval(t *testing.T) {
	f := newClaimFixture(t)
	f.addIdentity("code-owner", "Owner")
	f.addIdentity("code-hirer", "Hirer")

	reg := f.registerBot(t)
	ownerReq, err := f.claims.Create(t.Context(), CreateRequest{
		AuthCode:  "code-owner",
		ClaimCode: reg.ClaimCode,
	})
	if err != nil {
		t.Fatalf("owner claim: %v", err)
	}

	hireReq, err := f.claims.Create(t.Context(), CreateRequest{
		AuthCode:  "code-hirer",
		BotID:     reg.Bot.BotID,
		ClaimType: TypeHire,
		Message:   "let me borrow it",
	})
	if err != nil {
		t.Fatalf("hire request: %v", err)
	}
	if hireReq.Status != StatusPending {
		t.Fatalf("hire request status = %s, want pending", hireReq.Status)
	}
	f.notifier.mu.Lock()
	requested := len(f.notifier.requested)
	f.notifier.mu.Unlock()
	if requested != 1 {
		t.Fatalf("owner should have been notified once, got %d", requested)
	}

	// A stranger cannot decide.
	f.addIdentity("code-stranger", "Stranger")
	strangerReg := f.registerBot(t)
	strangerReq, err := f.claims.Create(t.Context(), CreateRequest{
		AuthCode:  "code-stranger",
		ClaimCode: strangerReg.ClaimCode,
	})
	if err != nil {
		t.Fatalf("stranger setup claim: %v", err)
	}
	if _, err := f.claims.Decide(t.Context(), strangerReq.RequesterID, hireReq.ID, Decision{Approve: true}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("stranger decide: err = %v, want ErrForbidden", err)
	}

	decided, err := f.claims.Decide(t.Context(), ownerReq.RequesterID, hireReq.ID, Decision{Approve: true, Message: "ok"})
	if err != nil {
		t.Fatalf("owner approve: %v", err)
	}
	if decided.Status != StatusApproved || decided.ApprovalMessage != "ok" {
		t.Fatalf("unexpected decision: %+v", decided)
	}

	// Approval created a grant with hire permissions.
	list, err := f.grants.ListForBot(t.Context(), ownerReq.RequesterID, reg.Bot.ID)
	if err != nil {
		t.Fatalf("list grants: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("grants = %d, want 1", len(list))
	}
	grant := list[0]
	if grant.AccessType != TypeHire || !grant.IsActive {
		t.Fatalf("unexpected grant: %+v", grant)
	}
	if !grant.Permissions.CanInvoke || !grant.Permissions.CanViewLogs || grant.Permissions.CanModifySettings {
		t.Fatalf("hire permissions wrong: %+v", grant.Permissions)
	}

	// Exactly one decision is recorded.
	if _, err := f.claims.Decide(t.Context(), ownerReq.RequesterID, hireReq.ID, Decision{Approve: false}); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("second decide: err = %v, want ErrInvalidState", err)
	}

	// Requester sees the hire grant among their active grants.
	mine, err := f.grants.ListForUser(t.Context(), hireReq.RequesterID)
	if err != nil {
		t.Fatalf("list my grants: %v", err)
	}
	if len(mine) != 1 {
		t.Fatalf("active grants = %d, want 1", len(mine))
	}

	// Owner revokes; the grant disappears from the active view.
	revoked, err := f.grants.Revoke(t.Context(), ownerReq.RequesterID, grant.ID)
	if err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if revoked.IsActive || revoked.RevokedAt == nil {
		t.Fatalf("revoked grant should be inactive: %+v", revoked)
	}
	mine, err = f.grants.ListForUser(t.Context(), hireReq.RequesterID)
	if err != nil {
		t.Fatalf("list my grants after revoke: %v", err)
	}
	if len(mine) != 0 {
		t.Fatalf("active grants after revoke = %d, want 0", len(mine))
	}
}

func TestShareClaimRejection(t *testing.T) {
	f := newClaimFixture(t)
	f.addIdentity("code-owner2", "Owner")
	f.addIdentity("code-friend", "Friend")

	reg := f.registerBot(t)
	ownerReq, err := f.claims.Create(t.Context(), CreateRequest{AuthCode: "code-owner2", ClaimCode: reg.ClaimCode})
	if err != nil {
		t.Fatalf("owner claim: %v", err)
	}
	shareReq, err := f.claims.Create(t.Context(), CreateRequest{
		AuthCode:  "code-friend",
		BotID:     reg.Bot.BotID,
		ClaimType: TypeShare,
	})
	if err != nil {
		t.Fatalf("share request: %v", err)
	}

	decided, err := f.claims.Decide(t.Context(), ownerReq.RequesterID, shareReq.ID, Decision{Approve: false, Message: "no"})
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if decided.Status != StatusRejected {
		t.Fatalf("status = %s, want rejected", decided.Status)
	}
	// A rejection does not stamp the approval columns.
	if decided.ApprovedBy != "" {
		t.Fatalf("approved_by = %s, want empty", decided.ApprovedBy)
	}
	if decided.ApprovedAt != nil {
		t.Fatalf("approved_at = %v, want nil", decided.ApprovedAt)
	}
	if decided.ApprovalMessage != "no" {
		t.Fatalf("approval_message = %q, want %q", decided.ApprovalMessage, "no")
	}

	// Rejection creates no grant.
	list, err := f.grants.ListForBot(t.Context(), ownerReq.RequesterID, reg.Bot.ID)
	if err != nil {
		t.Fatalf("list grants: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("grants = %d, want 0", len(list))
	}
}

func TestBoundBotVerificationFlag(t *testing.T) {
	f := newClaimFixture(t)
	f.addIdentity("code-admin", "Admin")
	f.addIdentity("code-member", "Member")

	reg, err := f.bots.Register(t.Context(), bots.RegisterRequest{
		BotID:       "bot-" + uuid.NewString(),
		BotName:     "Bound Bot",
		FeishuAppID: "cli_bound_app",
	})
	if err != nil {
		t.Fatalf("register bot: %v", err)
	}

	f.verifier.rel = feishu.Relationship{Verified: true, IsOwnerOrAdmin: true, Kind: "owner"}
	if _, err := f.claims.Create(t.Context(), CreateRequest{AuthCode: "code-admin", ClaimCode: reg.ClaimCode}); err != nil {
		t.Fatalf("owner claim: %v", err)
	}

	// A conclusive check that finds a plain member still counts as
	// verified on a hire request.
	f.verifier.rel = feishu.Relationship{Verified: true, IsOwnerOrAdmin: false, Kind: "member"}
	hireReq, err := f.claims.Create(t.Context(), CreateRequest{
		AuthCode:  "code-member",
		BotID:     reg.Bot.BotID,
		ClaimType: TypeHire,
	})
	if err != nil {
		t.Fatalf("hire request: %v", err)
	}
	if !hireReq.FeishuVerified {
		t.Fatal("feishu_verified = false for a conclusive membership check")
	}

	// The same result does not pass the ownership gate.
	reg2, err := f.bots.Register(t.Context(), bots.RegisterRequest{
		BotID:       "bot-" + uuid.NewString(),
		BotName:     "Bound Bot 2",
		FeishuAppID: "cli_bound_app",
	})
	if err != nil {
		t.Fatalf("register bot 2: %v", err)
	}
	if _, err := f.claims.Create(t.Context(), CreateRequest{AuthCode: "code-member", ClaimCode: reg2.ClaimCode}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("member owner claim: err = %v, want ErrForbidden", err)
	}
}

func TestClaimInputValidation(t *testing.T) {
	f := newClaimFixture(t)
	f.addIdentity("code-u", "User")

	reg := f.registerBot(t)

	// Neither claim_code nor bot_id.
	if _, err := f.claims.Create(t.Context(), CreateRequest{AuthCode: "code-u"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("no target: err = %v, want ErrInvalidInput", err)
	}
	// A code nobody issued.
	if _, err := f.claims.Create(t.Context(), CreateRequest{
		AuthCode:  "code-u",
		ClaimCode: "no-such-code-00000000",
	}); !errors.Is(err, ErrCodeNotFound) {
		t.Fatalf("bogus code: err = %v, want ErrCodeNotFound", err)
	}
	// Ownership hint on the bot-id path.
	if _, err := f.claims.Create(t.Context(), CreateRequest{
		AuthCode:  "code-u",
		BotID:     reg.Bot.BotID,
		ClaimType: TypeOwner,
	}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("owner hint: err = %v, want ErrInvalidInput", err)
	}
	// Hire against an unclaimed bot.
	if _, err := f.claims.Create(t.Context(), CreateRequest{
		AuthCode:  "code-u",
		BotID:     reg.Bot.BotID,
		ClaimType: TypeHire,
	}); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("hire unclaimed: err = %v, want ErrInvalidState", err)
	}
	// Unknown auth code propagates the upstream failure.
	if _, err := f.claims.Create(t.Context(), CreateRequest{
		AuthCode:  "code-unknown",
		ClaimCode: reg.ClaimCode,
	}); !errors.Is(err, feishu.ErrUpstreamAuth) {
		t.Fatalf("bad auth code: err = %v, want ErrUpstreamAuth", err)
	}
}

func TestExpiredClaimCode(t *testing.T) {
	f := newClaimFixture(t)
	f.addIdentity("code-late", "Latecomer")

	reg := f.registerBot(t)
	_, err := f.pool.Exec(t.Context(),
		"UPDATE bots SET claim_code_expires_at = $1 WHERE bot_id = $2",
		time.Now().UTC().Add(-time.Hour), reg.Bot.BotID)
	if err != nil {
		t.Fatalf("age claim code: %v", err)
	}

	_, err = f.claims.Create(t.Context(), CreateRequest{
		AuthCode:  "code-late",
		ClaimCode: reg.ClaimCode,
	})
	if !errors.Is(err, ErrCodeExpired) {
		t.Fatalf("expired code: err = %v, want ErrCodeExpired", err)
	}
}

func TestExpiredPendingRequestNotDecidable(t *testing.T) {
	f := newClaimFixture(t)
	f.addIdentity("code-owner3", "Owner")
	f.addIdentity("code-slow", "Slow")

	reg := f.registerBot(t)
	ownerReq, err := f.claims.Create(t.Context(), CreateRequest{AuthCode: "code-owner3", ClaimCode: reg.ClaimCode})
	if err != nil {
		t.Fatalf("owner claim: %v", err)
	}
	hireReq, err := f.claims.Create(t.Context(), CreateRequest{
		AuthCode:  "code-slow",
		BotID:     reg.Bot.BotID,
		ClaimType: TypeHire,
	})
	if err != nil {
		t.Fatalf("hire request: %v", err)
	}

	_, err = f.pool.Exec(t.Context(),
		"UPDATE claim_requests SET expires_at = $1 WHERE id = $2",
		time.Now().UTC().Add(-time.Minute), hireReq.ID)
	if err != nil {
		t.Fatalf("age request: %v", err)
	}

	if _, err := f.claims.Decide(t.Context(), ownerReq.RequesterID, hireReq.ID, Decision{Approve: true}); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("decide expired: err = %v, want ErrInvalidState", err)
	}

	// Reads derive the expired status lazily.
	got, err := f.claims.Get(t.Context(), hireReq.RequesterID, hireReq.ID)
	if err != nil {
		t.Fatalf("get request: %v", err)
	}
	if got.Status != StatusExpired {
		t.Fatalf("status = %s, want expired", got.Status)
	}
}
