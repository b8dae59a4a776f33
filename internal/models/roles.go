package models

// Определяем константы для ролей
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// AllRoles возвращает слайс всех определенных ролей.
func AllRoles() []string {
	return []string{
		RoleAdmin,
		RoleUser,
	}
}

// IsValidRole проверяет, что роль входит в список известных.
func IsValidRole(role string) bool {
	for _, r := range AllRoles() {
		if r == role {
			return true
		}
	}
	return false
}
