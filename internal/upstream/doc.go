// Package upstream checks packages of the aports tree against the versions
// published by a release-monitoring (Anitya) instance.
//
// Queries go through a retrying HTTP client and are cached on disk with a
// TTL, so repeated runs of the outdated check do not hit the service for
// every package.
package upstream
