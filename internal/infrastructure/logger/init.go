package logger

import "github.com/google/wire"

// ProviderSet exposes logger constructors for Wire.
var ProviderSet = wire.NewSet(
	NewLogger,
)
