package claims

import (
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"

	"github.com/bothubai/bothub/internal/db/sqlc"
	"github.com/bothubai/bothub/internal/feishu"
)

func TestAccessClaimType(t *testing.T) {
	t.Parallel()

	cases := []struct {
		raw     string
		want    string
		wantErr error
	}{
		{raw: "hire", want: TypeHire},
		{raw: "share", want: TypeShare},
		{raw: "owner", wantErr: ErrInvalidInput},
		{raw: "", wantErr: ErrInvalidInput},
		{raw: "steal", wantErr: ErrInvalidInput},
	}
	for _, tc := range cases {
		got, err := accessClaimType(tc.raw)
		if tc.wantErr != nil {
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("accessClaimType(%q) err = %v, want %v", tc.raw, err, tc.wantErr)
			}
			continue
		}
		if err != nil {
			t.Fatalf("accessClaimType(%q): %v", tc.raw, err)
		}
		if got != tc.want {
			t.Fatalf("accessClaimType(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestCodeExpired(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	assert.False(t, codeExpired(sqlc.Bot{}, now), "null expiry never expires")
	assert.False(t, codeExpired(sqlc.Bot{
		ClaimCodeExpiresAt: pgtype.Timestamptz{Time: now.Add(time.Hour), Valid: true},
	}, now))
	assert.True(t, codeExpired(sqlc.Bot{
		ClaimCodeExpiresAt: pgtype.Timestamptz{Time: now.Add(-time.Minute), Valid: true},
	}, now))
}

func TestToRequestLazyExpiry(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	base := sqlc.ClaimRequest{
		ClaimType: TypeHire,
		Status:    StatusPending,
	}

	past := base
	past.ExpiresAt = pgtype.Timestamptz{Time: now.Add(-time.Hour), Valid: true}
	assert.Equal(t, StatusExpired, toRequest(past, "bot", nil, now).Status,
		"pending past expiry reads as expired")

	future := base
	future.ExpiresAt = pgtype.Timestamptz{Time: now.Add(time.Hour), Valid: true}
	assert.Equal(t, StatusPending, toRequest(future, "bot", nil, now).Status)

	// Resolved requests keep their status even past expiry.
	approved := past
	approved.Status = StatusApproved
	assert.Equal(t, StatusApproved, toRequest(approved, "bot", nil, now).Status)
}

func TestToRequestVerification(t *testing.T) {
	t.Parallel()

	row := sqlc.ClaimRequest{
		ClaimType:              TypeOwner,
		Status:                 StatusApproved,
		FeishuVerified:         true,
		FeishuVerificationData: []byte(`{"app_id":"cli_x","is_admin":false}`),
		Message:                pgtype.Text{String: "please", Valid: true},
	}
	req := toRequest(row, "Demo", nil, time.Now().UTC())
	assert.True(t, req.FeishuVerified)
	assert.Equal(t, "cli_x", req.Verification["app_id"])
	assert.Equal(t, "please", req.Message)
	assert.Equal(t, "Demo", req.BotName)
}

func TestVerifyRequesterRecordsConclusiveness(t *testing.T) {
	t.Parallel()

	bound := sqlc.Bot{FeishuAppID: pgtype.Text{String: "cli_app", Valid: true}}

	// Conclusive check, requester is a plain member. The recorded flag
	// is the conclusiveness, not the ownership result.
	s := &Service{verifier: &fakeVerifier{rel: feishu.Relationship{
		Verified:       true,
		IsOwnerOrAdmin: false,
		Kind:           "member",
		Evidence:       map[string]any{"kind": "member"},
	}}}
	verified, ownerOrAdmin, evidence := s.verifyRequester(t.Context(), bound, feishu.Identity{UserID: "ou_1"})
	assert.True(t, verified)
	assert.False(t, ownerOrAdmin)
	assert.Equal(t, "member", evidence["kind"])

	// Inconclusive upstream answer.
	s = &Service{verifier: &fakeVerifier{rel: feishu.Relationship{}}}
	verified, ownerOrAdmin, evidence = s.verifyRequester(t.Context(), bound, feishu.Identity{UserID: "ou_1"})
	assert.False(t, verified)
	assert.False(t, ownerOrAdmin)
	assert.NotNil(t, evidence)
}

func TestVerifyRequesterNoAppBinding(t *testing.T) {
	t.Parallel()

	s := &Service{verifier: &fakeVerifier{}}
	verified, ownerOrAdmin, evidence := s.verifyRequester(t.Context(), sqlc.Bot{}, feishu.Identity{UserID: "ou_1"})
	assert.True(t, verified)
	assert.True(t, ownerOrAdmin)
	assert.Contains(t, evidence, "note")
}
