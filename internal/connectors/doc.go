// Package connectors holds document sources that feed uploads into the
// copilot from outside the request surfaces.
//
// The filesystem connector watches a folder and keeps the registry in step
// with the supported files inside it.
package connectors
