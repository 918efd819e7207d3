package events

// ConfigReloaded is emitted when a new configuration snapshot has been
// published.
type ConfigReloaded struct {
	Path string
}

// ConfigReloadFailed is emitted when a proposed configuration was
// rejected. The previous snapshot keeps serving.
type ConfigReloadFailed struct {
	Path string
	Err  error
}
