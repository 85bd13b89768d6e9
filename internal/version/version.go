package version

// Version is the semantic version of the likelisweep driver.
var Version = "0.1.0"
