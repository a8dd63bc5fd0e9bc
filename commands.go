package main

// Allow list of amplifier control words accepted on the acquire command line.
var allowedCommands = []string{
	"start", // Begin streaming sample lines
	"stop",  // Halt streaming
	"reset", // Reset the amplifier state machine

	// Sampling Rate
	"rate250",  // Set sampling rate to 250 samples/second
	"rate500",  // Set sampling rate to 500 samples/second
	"rate1000", // Set sampling rate to 1K samples/second

	// Gain Control
	"gain1",  // Unity gain
	"gain8",  // 8x gain
	"gain24", // 24x gain (default for most montage setups)

	// Diagnostics
	"status",    // Query amplifier status line
	"impedance", // Run an electrode impedance check cycle
	"test",      // Emit the built-in square wave test signal
	"normal",    // Return to normal electrode input
}

// isAllowedCommand reports whether a control word is in the allow list.
func isAllowedCommand(word string) bool {
	for _, allowed := range allowedCommands {
		if word == allowed {
			return true
		}
	}
	return false
}
