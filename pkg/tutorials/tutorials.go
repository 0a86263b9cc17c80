// Copyright (c) Facebook, Inc. and its affiliates.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree.

// Package tutorials copies the shared tutorial notebooks into the home
// directory of a user.
package tutorials

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// Copy copies the tree rooted at src to dst unless dst already exists. It
// returns whether anything was copied.
func Copy(src, dst string, log *logrus.Entry) (bool, error) {
	if _, err := os.Stat(dst); err == nil {
		log.Infof("NOT copying tutorials, folder %s already exists", dst)
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("cannot stat %s: %w", dst, err)
	}
	err := filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		switch {
		case info.IsDir():
			return os.MkdirAll(target, info.Mode().Perm()|0700)
		case info.Mode().IsRegular():
			return copyFile(path, target, info.Mode().Perm())
		default:
			log.Debugf("Skipping %s", path)
			return nil
		}
	})
	if err != nil {
		return false, fmt.Errorf("cannot copy tutorials from %s: %w", src, err)
	}
	log.Infof("Copied tutorials to %s", dst)
	return true, nil
}

func copyFile(src, dst string, perm os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
