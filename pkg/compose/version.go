package compose

// Version is the release of the compose module.
const Version = "0.1.0"
