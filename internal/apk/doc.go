// Package apk reads Android package archives.
//
// An archive is a zip file whose AndroidManifest.xml is stored in the
// compiled binary XML format. This package decodes just enough of that
// format to recover the package identity (name, version code, version
// name) and locates the launcher icon among the archive's resources.
//
// # Binary XML
//
// The document is a sequence of little-endian chunks. ParseManifest reads
// the string pool (UTF-8 or UTF-16) and walks start-element chunks until
// the root <manifest> element, whose typed attributes carry the identity.
//
// # Icon Selection
//
// Resolving android:icon needs the compiled resource table, so the icon is
// located by name instead: launcher icon entries under res/mipmap* and
// res/drawable*, highest screen density first. See SelectIcon.
//
// # Installed Applications
//
// DirRegistry indexes a directory of installed archives by package name
// and can watch it for changes with fsnotify.
package apk
