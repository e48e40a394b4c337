package platform

// Permission names form the adapter-neutral vocabulary used by command
// permission specs. Adapters translate their SDK's permission bits into
// these names.
const (
	PermAdministrator      = "administrator"
	PermManageGuild        = "manageGuild"
	PermManageChannels     = "manageChannels"
	PermManageMessages     = "manageMessages"
	PermManageRoles        = "manageRoles"
	PermManageWebhooks     = "manageWebhooks"
	PermManageNicknames    = "manageNicknames"
	PermKickMembers        = "kickMembers"
	PermBanMembers         = "banMembers"
	PermModerateMembers    = "moderateMembers"
	PermViewAuditLogs      = "viewAuditLogs"
	PermViewChannel        = "viewChannel"
	PermSendMessages       = "sendMessages"
	PermEmbedLinks         = "embedLinks"
	PermAttachFiles        = "attachFiles"
	PermAddReactions       = "addReactions"
	PermMentionEveryone    = "mentionEveryone"
	PermReadMessageHistory = "readMessageHistory"
	PermCreateInvite       = "createInstantInvite"
	PermChangeNickname     = "changeNickname"
	PermManageEvents       = "manageEvents"
	PermManageThreads      = "manageThreads"
)

// permDisplay maps permission names to the labels shown in user-facing
// notices.
var permDisplay = map[string]string{
	PermAdministrator:      "Administrator",
	PermManageGuild:        "Manage Server",
	PermManageChannels:     "Manage Channels",
	PermManageMessages:     "Manage Messages",
	PermManageRoles:        "Manage Roles",
	PermManageWebhooks:     "Manage Webhooks",
	PermManageNicknames:    "Manage Nicknames",
	PermKickMembers:        "Kick Members",
	PermBanMembers:         "Ban Members",
	PermModerateMembers:    "Moderate Members",
	PermViewAuditLogs:      "View Audit Logs",
	PermViewChannel:        "View Channel",
	PermSendMessages:       "Send Messages",
	PermEmbedLinks:         "Embed Links",
	PermAttachFiles:        "Attach Files",
	PermAddReactions:       "Add Reactions",
	PermMentionEveryone:    "Mention Everyone",
	PermReadMessageHistory: "Read Message History",
	PermCreateInvite:       "Create Instant Invite",
	PermChangeNickname:     "Change Nickname",
	PermManageEvents:       "Manage Events",
	PermManageThreads:      "Manage Threads",
}

// ValidPermission reports whether name belongs to the vocabulary.
func ValidPermission(name string) bool {
	_, ok := permDisplay[name]
	return ok
}

// PermissionDisplay returns the user-facing label for a permission name,
// falling back to the raw name.
func PermissionDisplay(name string) string {
	if d, ok := permDisplay[name]; ok {
		return d
	}
	return name
}
