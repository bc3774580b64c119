package models

// Роли, влияющие на права управления раундом.
const (
	RoleAdmin     = "ROLE_ADMIN"
	RoleModerator = "ROLE_MODERATOR"
	RoleUser      = "ROLE_USER"
)

// HasRole проверяет, есть ли у пользователя указанная роль.
func HasRole(userRoles []string, targetRole string) bool {
	for _, role := range userRoles {
		if role == targetRole {
			return true
		}
	}
	return false
}

// CanManageRounds возвращает true для ролей, которым разрешено закрывать раунды
// и переносить окно голосования в чужих историях.
func CanManageRounds(userRoles []string) bool {
	return HasRole(userRoles, RoleAdmin) || HasRole(userRoles, RoleModerator)
}
