package filesystem

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/guisu-dotfiles/guisu/pkg/logging"
)

// TemporaryNamePrefix is the prefix applied to all temporary files and
// directories created by this package so that they're recognizable (and, if
// necessary, cleanable) as belonging to guisu.
const TemporaryNamePrefix = ".guisu-"

// atomicWriteTemporaryNamePrefix is the file name prefix used for
// intermediate temporary files used in atomic writes.
const atomicWriteTemporaryNamePrefix = TemporaryNamePrefix + "atomic-write"

// cleanupRemove removes a path, logging (rather than propagating) any
// failure, since it only runs once we're already unwinding from a previous
// error and a second error would just obscure the first.
func cleanupRemove(logger *logging.Logger, path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logger.Warn(errors.Wrap(err, "unable to remove temporary file during cleanup"))
	}
}

// WriteFileAtomic writes a file to disk in an atomic fashion: the content is
// written to, and fsynced on, an intermediate temporary file in the same
// directory, which is then swapped into place using a rename operation
// (atomic on POSIX filesystems when source and destination share a device).
// The fsync closes the window where a rename could land before the temporary
// file's content is durable.
func WriteFileAtomic(path string, data []byte, permissions os.FileMode, logger *logging.Logger) error {
	temporary, err := os.CreateTemp(filepath.Dir(path), atomicWriteTemporaryNamePrefix)
	if err != nil {
		return errors.Wrap(err, "unable to create temporary file")
	}
	temporaryName := temporary.Name()

	if _, err = temporary.Write(data); err != nil {
		temporary.Close()
		cleanupRemove(logger, temporaryName)
		return errors.Wrap(err, "unable to write data to temporary file")
	}

	if err = temporary.Sync(); err != nil {
		temporary.Close()
		cleanupRemove(logger, temporaryName)
		return errors.Wrap(err, "unable to sync temporary file to disk")
	}

	if err = temporary.Close(); err != nil {
		cleanupRemove(logger, temporaryName)
		return errors.Wrap(err, "unable to close temporary file")
	}

	if err = os.Chmod(temporaryName, permissions); err != nil {
		cleanupRemove(logger, temporaryName)
		return errors.Wrap(err, "unable to change file permissions")
	}

	if err = renameReplacing(temporaryName, path); err != nil {
		cleanupRemove(logger, temporaryName)
		return errors.Wrap(err, "unable to rename file into place")
	}

	return nil
}

// renameReplacing renames source to destination, falling back to a
// copy-then-remove if the two paths reside on different devices (in which
// case os.Rename fails with EXDEV and atomicity can't be guaranteed by the
// filesystem alone).
func renameReplacing(source, destination string) error {
	err := os.Rename(source, destination)
	if err == nil {
		return nil
	}
	if !isCrossDeviceError(err) {
		return err
	}

	contents, readErr := os.ReadFile(source)
	if readErr != nil {
		return err
	}
	info, statErr := os.Stat(source)
	if statErr != nil {
		return err
	}
	if writeErr := os.WriteFile(destination, contents, info.Mode()); writeErr != nil {
		return writeErr
	}
	os.Remove(source)
	return nil
}
