package service

// Cache entity namespaces. Every mutation of an entity invalidates all cache
// entries whose key carries its namespace.
const (
	EntityFolders = "folders"
	EntityMedia   = "media"
	EntityUsers   = "users"
)
