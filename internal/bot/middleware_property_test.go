package bot

import (
	"testing"

	"pgregory.net/rapid"

	"uno-score-bot/internal/config"
)

func drawIDs(t *rapid.T, label string, negative bool) []int64 {
	n := rapid.IntRange(1, 10).Draw(t, "num_"+label)
	ids := make([]int64, n)
	for i := range ids {
		ids[i] = rapid.Int64Range(1, 1000000000).Draw(t, label)
		if negative {
			ids[i] = -ids[i]
		}
	}
	return ids
}

func contains(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// TestAdminPermissionCheckProperty checks that a non-empty admin list admits exactly its
// members.
func TestAdminPermissionCheckProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		adminIDs := drawIDs(t, "adminID", false)
		cfg := &config.Config{Admin: config.AdminConfig{IDs: adminIDs}}

		known := adminIDs[rapid.IntRange(0, len(adminIDs)-1).Draw(t, "adminIndex")]
		if !cfg.IsAdmin(known) {
			t.Fatalf("admin %d not recognised, admins=%v", known, adminIDs)
		}

		userID := rapid.Int64Range(1, 1000000000).Draw(t, "userID")
		if cfg.IsAdmin(userID) != contains(adminIDs, userID) {
			t.Fatalf("IsAdmin(%d) mismatch, admins=%v", userID, adminIDs)
		}
	})
}

// TestEmptyAdminListAdmitsEveryoneProperty checks that a group with no configured admins
// can still manage its roster.
func TestEmptyAdminListAdmitsEveryoneProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cfg := &config.Config{}
		userID := rapid.Int64Range(1, 1000000000).Draw(t, "userID")
		if !cfg.IsAdmin(userID) {
			t.Fatalf("user %d rejected with an empty admin list", userID)
		}
	})
}

// TestWhitelistEnforcementProperty checks that a non-empty whitelist admits exactly its
// chats and an empty one admits all.
func TestWhitelistEnforcementProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		chatIDs := drawIDs(t, "chatID", true)
		cfg := &config.Config{Whitelist: config.WhitelistConfig{Chats: chatIDs}}

		testChatID := -rapid.Int64Range(1, 1000000000).Draw(t, "testChatID")
		if cfg.IsChatAllowed(testChatID) != contains(chatIDs, testChatID) {
			t.Fatalf("IsChatAllowed(%d) mismatch, whitelist=%v", testChatID, chatIDs)
		}

		open := &config.Config{}
		if !open.IsChatAllowed(testChatID) {
			t.Fatalf("empty whitelist rejected chat %d", testChatID)
		}
	})
}

// TestGroupMembersProperty checks that allowed users stay allowed and others are not.
func TestGroupMembersProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		members := NewGroupMembers()
		ids := drawIDs(t, "userID", false)
		for _, id := range ids {
			members.Allow(id)
		}
		for _, id := range ids {
			if !members.Allowed(id) {
				t.Fatalf("user %d should be allowed", id)
			}
		}
		other := rapid.Int64Range(1, 1000000000).Draw(t, "other")
		if members.Allowed(other) != contains(ids, other) {
			t.Fatalf("Allowed(%d) mismatch", other)
		}
	})
}

// TestRateLimiterBurstProperty checks that a fresh user gets exactly burst commands at
// one instant.
func TestRateLimiterBurstProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		burst := rapid.IntRange(1, 20).Draw(t, "burst")
		l := NewUserRateLimiter(0.001, burst)
		userID := rapid.Int64Range(1, 1000000000).Draw(t, "userID")

		allowed := 0
		for i := 0; i < burst+5; i++ {
			if l.Allow(userID) {
				allowed++
			}
		}
		if allowed != burst {
			t.Fatalf("allowed %d commands, want %d", allowed, burst)
		}
	})
}
