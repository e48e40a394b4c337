package discord

import (
	"github.com/bwmarrin/discordgo"

	"github.com/keshon/botkit/internal/platform"
)

// permBits maps discordgo permission bits to the adapter-neutral names the
// command layer checks against.
var permBits = []struct {
	bit  int64
	name string
}{
	{discordgo.PermissionAdministrator, platform.PermAdministrator},
	{discordgo.PermissionManageServer, platform.PermManageGuild},
	{discordgo.PermissionManageChannels, platform.PermManageChannels},
	{discordgo.PermissionManageMessages, platform.PermManageMessages},
	{discordgo.PermissionManageRoles, platform.PermManageRoles},
	{discordgo.PermissionManageWebhooks, platform.PermManageWebhooks},
	{discordgo.PermissionManageNicknames, platform.PermManageNicknames},
	{discordgo.PermissionKickMembers, platform.PermKickMembers},
	{discordgo.PermissionBanMembers, platform.PermBanMembers},
	{discordgo.PermissionModerateMembers, platform.PermModerateMembers},
	{discordgo.PermissionViewAuditLogs, platform.PermViewAuditLogs},
	{discordgo.PermissionViewChannel, platform.PermViewChannel},
	{discordgo.PermissionSendMessages, platform.PermSendMessages},
	{discordgo.PermissionEmbedLinks, platform.PermEmbedLinks},
	{discordgo.PermissionAttachFiles, platform.PermAttachFiles},
	{discordgo.PermissionAddReactions, platform.PermAddReactions},
	{discordgo.PermissionMentionEveryone, platform.PermMentionEveryone},
	{discordgo.PermissionReadMessageHistory, platform.PermReadMessageHistory},
	{discordgo.PermissionCreateInstantInvite, platform.PermCreateInvite},
	{discordgo.PermissionChangeNickname, platform.PermChangeNickname},
	{discordgo.PermissionManageEvents, platform.PermManageEvents},
	{discordgo.PermissionManageThreads, platform.PermManageThreads},
}

// permissionNames expands a permission bitfield into names. Administrator
// implies the full set.
func permissionNames(perms int64) []string {
	if perms&discordgo.PermissionAdministrator != 0 {
		names := make([]string, 0, len(permBits))
		for _, p := range permBits {
			names = append(names, p.name)
		}
		return names
	}
	names := make([]string, 0, 8)
	for _, p := range permBits {
		if perms&p.bit != 0 {
			names = append(names, p.name)
		}
	}
	return names
}
