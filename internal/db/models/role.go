package models

// RoleUser is the implicit zero value of a standard account.
const RoleUser uint = 0

// Role bitmask values granting individual capabilities.
const (
	RoleAdmin uint = 1 << iota
	RoleDownload
	RoleUpload
	RoleEdit
	RolePasswd
	RoleAnonymous
	RoleEditShelves
	RoleDeleteBooks
	RoleViewer
)

// Sidebar visibility bitmask values. Each bit shows one sidebar section.
const (
	SidebarLanguage uint = 1 << iota
	SidebarSeries
	SidebarCategory
	SidebarHot
	SidebarRandom
	SidebarAuthor
	SidebarBestRated
	SidebarRecent
	SidebarSorted
	SidebarPublisher
	SidebarArchived
	SidebarDownload
	SidebarList
)

// DefaultRole is the role bitmask assigned to auto-provisioned accounts.
const DefaultRole = RoleUser | RoleDownload | RoleUpload | RoleViewer

// AdminRole is the elevation added when a provider identity claims
// administrative group membership.
const AdminRole = RoleAdmin | RoleDeleteBooks | RoleEdit | RolePasswd | RoleEditShelves

// DefaultSidebar is the sidebar bitmask assigned to auto-provisioned accounts.
const DefaultSidebar = SidebarArchived | SidebarLanguage | SidebarSeries | SidebarCategory |
	SidebarHot | SidebarRandom | SidebarAuthor | SidebarBestRated | SidebarRecent |
	SidebarSorted | SidebarPublisher

// AdminSidebar is the broadened sidebar visibility for administrators.
const AdminSidebar = SidebarDownload | SidebarList
