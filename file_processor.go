package csvapi

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"github.com/nao1215/csvapi/domain/model"
	"github.com/nao1215/csvapi/parser"
)

// fileProcessor collects local files to load as datasets.
type fileProcessor struct {
	fs afero.Fs
}

func newFileProcessor(fs afero.Fs) *fileProcessor {
	return &fileProcessor{fs: fs}
}

// collectFilesFromPaths validates paths and expands directories into the
// supported files they contain. When both "x.csv" and "x.csv.gz" are found
// only the uncompressed one is kept.
func (fp *fileProcessor) collectFilesFromPaths(paths []string) ([]string, error) {
	var collectedPaths []string
	processedFiles := make(map[string]bool)

	for _, path := range paths {
		info, err := fp.validatePath(path)
		if err != nil {
			return nil, err
		}

		if info.IsDir() {
			dirFiles, err := fp.collectFilesFromDirectory(path, processedFiles)
			if err != nil {
				return nil, err
			}
			collectedPaths = append(collectedPaths, dirFiles...)
			continue
		}
		fp.addSingleFile(path, processedFiles, &collectedPaths)
	}

	return deduplicateCompressedFiles(collectedPaths), nil
}

// validatePath checks that path exists and, for files, is a supported type.
func (fp *fileProcessor) validatePath(path string) (os.FileInfo, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("path cannot be empty")
	}

	info, err := fp.fs.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("path does not exist: %s", path)
		}
		return nil, fmt.Errorf("failed to stat path %s: %w", path, err)
	}
	if !info.IsDir() && !parser.IsSupportedFile(path) {
		return nil, fmt.Errorf("unsupported file type: %s", path)
	}
	return info, nil
}

// collectFilesFromDirectory recursively collects all supported files from a directory
func (fp *fileProcessor) collectFilesFromDirectory(dirPath string, processedFiles map[string]bool) ([]string, error) {
	var collectedPaths []string

	err := afero.Walk(fp.fs, dirPath, func(filePath string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !parser.IsSupportedFile(filePath) {
			return nil
		}
		fp.addSingleFile(filePath, processedFiles, &collectedPaths)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory %s: %w", dirPath, err)
	}

	return collectedPaths, nil
}

func (fp *fileProcessor) addSingleFile(filePath string, processedFiles map[string]bool, collectedPaths *[]string) {
	key := filepath.Clean(filePath)
	if !processedFiles[key] {
		processedFiles[key] = true
		*collectedPaths = append(*collectedPaths, filePath)
	}
}

// deduplicateCompressedFiles removes compressed files when their uncompressed
// versions exist. The result is sorted by path.
func deduplicateCompressedFiles(files []string) []string {
	plain := make(map[string]bool)
	for _, file := range files {
		if !isCompressedFile(file) {
			plain[stripCompression(file)] = true
		}
	}

	result := make([]string, 0, len(files))
	for _, file := range files {
		if isCompressedFile(file) && plain[stripCompression(file)] {
			continue
		}
		result = append(result, file)
	}
	sort.Strings(result)
	return result
}

func isCompressedFile(filePath string) bool {
	return parser.DetectFormat(filePath).Compression != parser.CompressionNone
}

func stripCompression(filePath string) string {
	ext := parser.DetectFormat(filePath).Compression.Extension()
	return filePath[:len(filePath)-len(ext)]
}

// LoadPaths materializes every supported file under paths (files or
// directories, read through fs). name overrides the derived dataset name and
// is only allowed when exactly one file is loaded. Loading stops at the
// first failure; datasets created before it are kept.
func (s *Service) LoadPaths(ctx context.Context, fs afero.Fs, paths []string, name string) ([]model.Dataset, error) {
	files, err := newFileProcessor(fs).collectFilesFromPaths(paths)
	if err != nil {
		return nil, model.NewErrorContext("load").Wrap(model.ErrInvalidParameter, err)
	}
	if len(files) == 0 {
		return nil, model.NewErrorContext("load").
			WithDetails("no supported files found").
			Error(model.ErrInvalidParameter)
	}
	if name != "" && len(files) > 1 {
		return nil, model.NewErrorContext("load").
			WithDetails(fmt.Sprintf("a name can only be given for a single file, found %d", len(files))).
			Error(model.ErrInvalidParameter)
	}

	created := make([]model.Dataset, 0, len(files))
	for _, path := range files {
		ds, err := s.loadFile(ctx, fs, path, name)
		if err != nil {
			return created, fmt.Errorf("failed to load %s: %w", path, err)
		}
		created = append(created, ds)
	}
	return created, nil
}

func (s *Service) loadFile(ctx context.Context, fs afero.Fs, path, name string) (model.Dataset, error) {
	f, err := fs.Open(path)
	if err != nil {
		return model.Dataset{}, model.NewErrorContext("load").WithDetails(path).Wrap(model.ErrInvalidParameter, err)
	}
	defer f.Close()

	return s.CreateDataset(ctx, Upload{
		Name:     name,
		FileName: filepath.Base(path),
		Body:     f,
	})
}
