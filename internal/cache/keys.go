package cache

import (
	"fmt"

	"github.com/google/uuid"
)

// MembershipsAllKey ключ списка активных абонементов.
const MembershipsAllKey = "memberships:all"

// StatsKey ключ сводки посещений пользователя.
func StatsKey(userID uuid.UUID) string {
	return "stats:" + userID.String()
}

// MembershipKey ключ абонемента из каталога.
func MembershipKey(id int64) string {
	return fmt.Sprintf("membership:%d", id)
}
