package model

import (
	"encoding/json"
	"testing"
	"time"

	"newsroom_api/pkg/security"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestInitialStatus(t *testing.T) {
	assert.Equal(t, StatusPendingReview, InitialStatus(security.RoleJournalist))
	for _, role := range []security.Role{security.RoleReader, security.RoleRegisteredUser, security.RoleModerator, security.RoleAdmin} {
		assert.Equal(t, StatusDraft, InitialStatus(role), role)
	}
}

func TestApplyEdit(t *testing.T) {
	statuses := []Status{StatusDraft, StatusPendingReview, StatusApproved, StatusRejected}

	t.Run("author content edit resets to pending_review", func(t *testing.T) {
		for _, from := range statuses {
			n := &News{Title: "A", Content: "B", Status: from}
			previous, err := n.ApplyEdit(Fields{Content: strPtr("B2")}, true)
			require.NoError(t, err)
			assert.Equal(t, from, previous)
			assert.Equal(t, StatusPendingReview, n.Status, from)
		}
	})

	t.Run("author metadata edit keeps status", func(t *testing.T) {
		n := &News{Title: "A", Content: "B", Status: StatusApproved}
		_, err := n.ApplyEdit(Fields{Summary: strPtr("s"), Category: strPtr("tech")}, true)
		require.NoError(t, err)
		assert.Equal(t, StatusApproved, n.Status)
		assert.Equal(t, "tech", n.Category)
	})

	t.Run("resubmitting the same title still resets", func(t *testing.T) {
		for _, from := range []Status{StatusDraft, StatusRejected} {
			n := &News{Title: "A", Content: "B", Status: from}
			previous, err := n.ApplyEdit(Fields{Title: strPtr("A")}, true)
			require.NoError(t, err)
			assert.Equal(t, from, previous)
			assert.Equal(t, StatusPendingReview, n.Status, from)
		}
	})

	t.Run("staff edit never resets", func(t *testing.T) {
		for _, from := range statuses {
			n := &News{Title: "A", Content: "B", Status: from}
			_, err := n.ApplyEdit(Fields{Title: strPtr("A2"), Content: strPtr("B2")}, false)
			require.NoError(t, err)
			assert.Equal(t, from, n.Status)
			assert.Equal(t, "A2", n.Title)
		}
	})

	t.Run("lists are stored as json arrays", func(t *testing.T) {
		n := &News{}
		tags := []string{"politics", "breaking"}
		_, err := n.ApplyEdit(Fields{Tags: &tags}, false)
		require.NoError(t, err)

		var got []string
		require.NoError(t, json.Unmarshal(n.Tags, &got))
		assert.Equal(t, tags, got)
	})
}

func TestApplyReview(t *testing.T) {
	first := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	later := first.Add(48 * time.Hour)

	t.Run("approval sets publishedAt once", func(t *testing.T) {
		n := &News{Status: StatusPendingReview}
		previous := n.ApplyReview(StatusApproved, "mod-1", "ok", first)

		assert.Equal(t, StatusPendingReview, previous)
		assert.Equal(t, StatusApproved, n.Status)
		assert.Equal(t, "mod-1", *n.ReviewedBy)
		assert.Equal(t, "ok", n.ReviewComments)
		require.NotNil(t, n.PublishedAt)
		assert.Equal(t, first, *n.PublishedAt)

		n.ApplyReview(StatusApproved, "mod-2", "again", later)
		assert.Equal(t, first, *n.PublishedAt)
		assert.Equal(t, "mod-2", *n.ReviewedBy)
	})

	t.Run("rejection never sets publishedAt", func(t *testing.T) {
		n := &News{Status: StatusDraft}
		n.ApplyReview(StatusRejected, "mod-1", "no", first)
		assert.Equal(t, StatusRejected, n.Status)
		assert.Nil(t, n.PublishedAt)
	})

	t.Run("rejection keeps an earlier publishedAt", func(t *testing.T) {
		n := &News{Status: StatusApproved, PublishedAt: &first}
		n.ApplyReview(StatusRejected, "mod-1", "retracted", later)
		assert.Equal(t, first, *n.PublishedAt)
	})
}

func TestMarshalList(t *testing.T) {
	raw, err := MarshalList[string](nil)
	require.NoError(t, err)
	assert.JSONEq(t, "[]", string(raw))
}

func TestStatus(t *testing.T) {
	assert.True(t, StatusPublished.IsValid())
	assert.False(t, Status("archived").IsValid())
	assert.False(t, StatusPublished.IsReviewDecision())
	assert.True(t, StatusRejected.IsReviewDecision())
}
