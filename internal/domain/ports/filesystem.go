package ports

import (
	"io"
	"os"
)

// FileSystem abstracts the file operations used by local stores and sinks
type FileSystem interface {
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm os.FileMode) error
	Create(name string) (io.WriteCloser, error)
	MkdirAll(path string, perm os.FileMode) error
	Rename(oldpath, newpath string) error
}

// RealFileSystem implements FileSystem on the os package
type RealFileSystem struct{}

// NewRealFileSystem creates a new real filesystem implementation
func NewRealFileSystem() FileSystem {
	return &RealFileSystem{}
}

// ReadFile reads the whole file
func (fs *RealFileSystem) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(name) // #nosec G304 - paths come from configuration
}

// WriteFile writes data to a file
func (fs *RealFileSystem) WriteFile(name string, data []byte, perm os.FileMode) error {
	return os.WriteFile(name, data, perm)
}

// Create creates or truncates a file
func (fs *RealFileSystem) Create(name string) (io.WriteCloser, error) {
	return os.Create(name) // #nosec G304 - paths come from configuration
}

// MkdirAll creates a directory tree
func (fs *RealFileSystem) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}

// Rename moves a file
func (fs *RealFileSystem) Rename(oldpath, newpath string) error {
	return os.Rename(oldpath, newpath)
}
