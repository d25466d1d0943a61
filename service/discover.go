package service

import (
	"os"
	"path/filepath"

	ignore "github.com/sabhiram/go-gitignore"

	"github.com/bmatcuk/doublestar/v4"
)

// ProgramFilePattern is the default glob for program description files
// discovered under a directory.
const ProgramFilePattern = "**/*.cflow.yaml"

// DiscoverProgramFiles resolves paths to a flat list of program
// description files. A path that is already a file is used as-is; a
// directory is walked recursively, matching ProgramFilePattern and
// skipping anything the root .gitignore (if present) excludes, the same
// combination the teacher's file collection uses doublestar glob
// matching and jscan's collector uses go-gitignore for.
func DiscoverProgramFiles(paths []string) ([]string, error) {
	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, path)
			continue
		}

		gi := loadGitIgnore(path)
		err = filepath.WalkDir(path, func(walkPath string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			rel, relErr := filepath.Rel(path, walkPath)
			if relErr == nil && gi != nil && gi.MatchesPath(rel) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				return nil
			}
			matched, matchErr := doublestar.Match(ProgramFilePattern, filepath.ToSlash(rel))
			if matchErr == nil && matched {
				files = append(files, walkPath)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}

func loadGitIgnore(root string) *ignore.GitIgnore {
	gi, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore"))
	if err != nil {
		return nil
	}
	return gi
}
