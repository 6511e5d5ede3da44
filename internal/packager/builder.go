package packager

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"capestudio/internal/cape"
	"capestudio/internal/config"
	"capestudio/internal/envelope"
	"capestudio/internal/faults"
	"capestudio/internal/fileutil"
	"capestudio/internal/logging"
	"capestudio/internal/signature"
	"capestudio/internal/staging"
)

const (
	component    = "packager"
	packSubdir   = "pack"
	outerStaging = "primary.zip"
	lockPoll     = 100 * time.Millisecond
)

// Builder produces cape archives.
type Builder struct {
	stagingDir string
	zipsDir    string
	langName   string
	encryptor  *envelope.Encryptor
	newUUID    func() string
	logger     *slog.Logger
}

// New constructs a Builder from cfg.
func New(cfg *config.Config, logger *slog.Logger) (*Builder, error) {
	if cfg == nil {
		return nil, faults.Wrap(faults.ErrConfiguration, component, "init", "config is nil", nil)
	}
	langName, err := LangName(cfg.Package.Locale)
	if err != nil {
		return nil, faults.Wrap(faults.ErrConfiguration, component, "init", "package.locale", err)
	}
	encryptor, err := envelope.NewEncryptor(cfg.Package.ContentKey)
	if err != nil {
		return nil, faults.Wrap(faults.ErrConfiguration, component, "init", "package.content_key", err)
	}
	return &Builder{
		stagingDir: cfg.Paths.StagingDir,
		zipsDir:    cfg.ZipsDir(),
		langName:   langName,
		encryptor:  encryptor,
		newUUID:    uuid.NewString,
		logger:     logging.NewComponentLogger(logger, component),
	}, nil
}

// ZipsDir is the directory finished archives are written into.
func (b *Builder) ZipsDir() string {
	return b.zipsDir
}

// Build stages, signs, encrypts and zips def, then writes the archive to
// <zips>/<item_id>_primary.zip and records that path on def.
func (b *Builder) Build(ctx context.Context, def *cape.Definition) (string, error) {
	if def == nil {
		return "", faults.Wrap(faults.ErrPrecondition, component, "build", "definition is nil", nil)
	}
	if err := def.Validate(); err != nil {
		return "", faults.Wrap(faults.ErrPrecondition, component, "validate", "cape "+def.ItemID, err)
	}
	if !fileutil.IsRegularFile(def.TexturePath) {
		msg := fmt.Sprintf("cape %s: texture %q not found", def.ItemID, def.TexturePath)
		return "", faults.Wrap(faults.ErrPrecondition, component, "stage texture", msg, nil)
	}

	started := time.Now()
	logger := b.logger.With(
		logging.String(logging.FieldItemID, def.ItemID),
		logging.String(logging.FieldPieceUUID, def.PieceUUID),
	)

	if err := os.MkdirAll(b.stagingDir, 0o755); err != nil {
		return "", b.ioError("prepare staging", def.ItemID, err)
	}
	lock := staging.NewLock(b.stagingDir, def.ItemID)
	locked, err := lock.TryLockContext(ctx, lockPoll)
	if err != nil || !locked {
		if err == nil {
			err = ctx.Err()
		}
		return "", b.ioError("acquire build lock", def.ItemID, err)
	}
	defer func() {
		_ = lock.Unlock()
	}()

	workDir := staging.WorkDir(b.stagingDir, def.ItemID)
	if err := os.RemoveAll(workDir); err != nil {
		return "", b.ioError("reset staging", def.ItemID, err)
	}
	defer func() {
		if err := os.RemoveAll(workDir); err != nil {
			logging.WarnWithContext(logger, "staging directory not removed", "staging_cleanup_failed",
				logging.String("path", workDir),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "remove the directory manually or run capestudio staging clean"),
			)
		}
	}()

	packDir := filepath.Join(workDir, packSubdir)
	if _, err := stageTree(packDir, *def, b.newUUID(), b.langName); err != nil {
		return "", b.ioError("stage package", def.ItemID, err)
	}
	if _, err := signature.SignManifest(packDir); err != nil {
		return "", b.ioError("sign manifest", def.ItemID, err)
	}
	table, err := b.encryptor.Encrypt(packDir, def.PieceUUID)
	if err != nil {
		return "", b.ioError("encrypt package", def.ItemID, err)
	}
	if err := ctx.Err(); err != nil {
		return "", b.ioError("build", def.ItemID, err)
	}

	innerPath := filepath.Join(workDir, InnerArchiveName)
	if err := zipTree(packDir, innerPath); err != nil {
		return "", b.ioError("write inner archive", def.ItemID, err)
	}
	outerPath := filepath.Join(workDir, outerStaging)
	if err := zipSingle(innerPath, InnerArchiveName, outerPath); err != nil {
		return "", b.ioError("write outer archive", def.ItemID, err)
	}

	if err := os.MkdirAll(b.zipsDir, 0o755); err != nil {
		return "", b.ioError("prepare output", def.ItemID, err)
	}
	dest := def.ArchivePathIn(b.zipsDir)
	if err := fileutil.MoveFileAtomic(outerPath, dest, 0o644); err != nil {
		return "", b.ioError("publish archive", def.ItemID, err)
	}
	def.ArchivePath = dest

	logger.Info("built cape archive",
		logging.String("path", dest),
		logging.Int("encrypted_files", len(table.Encrypted())),
		logging.Int("plain_entries", len(table.Plain())),
		logging.Duration("elapsed", time.Since(started)),
		logging.String(logging.FieldEventType, "package_built"),
	)
	return dest, nil
}

func (b *Builder) ioError(operation, itemID string, err error) error {
	return faults.Wrap(faults.ErrTransientIO, component, operation, "cape "+itemID, err)
}
