package model

// PlatformRole is a role assignment read live from the platform. Never persisted.
type PlatformRole struct {
	RoleId   string `json:"roleId"`
	GuildId  string `json:"guildId"`
	RoleName string `json:"roleName"`
}

type PlatformRoleMutation struct {
	UserId  string `json:"userId"`
	RoleId  string `json:"roleId"`
	GuildId string `json:"guildId"`
}

type PlatformRolesResponse struct {
	Roles []PlatformRole `json:"roles"`
}

type PlatformGuildResponse struct {
	GuildId string `json:"guildId"`
}

type MemberUpdateEvent struct {
	UserId  string `json:"userId"`
	GuildId string `json:"guildId"`
}
