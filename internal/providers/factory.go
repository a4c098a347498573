// Package providers resolves folder path phrases into devices: native-local
// paths, Google Drive ("gdrive:"), and in-memory volumes ("mem:") for dry
// runs and tests.
package providers

import (
	"context"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/viper"

	"github.com/wuhui20091515/FreeFileSync/internal/core/interfaces"
	"github.com/wuhui20091515/FreeFileSync/internal/providers/gdrive"
	"github.com/wuhui20091515/FreeFileSync/internal/providers/memory"
	"github.com/wuhui20091515/FreeFileSync/internal/providers/native"
	ffserrors "github.com/wuhui20091515/FreeFileSync/pkg/errors"
)

// Factory creates devices from folder path phrases. Devices are shared:
// every path phrase addressing the same storage yields the same handle.
type Factory struct {
	ctx context.Context

	mu         sync.Mutex
	nativeDev  *native.Device
	gdriveDev  *gdrive.Device
	memVolumes map[string]*memory.Device
}

// NewFactory creates a device factory
func NewFactory(ctx context.Context) *Factory {
	return &Factory{
		ctx:        ctx,
		memVolumes: make(map[string]*memory.Device),
	}
}

// ParsePathPhrase resolves a folder path phrase into an abstract path
func (f *Factory) ParsePathPhrase(phrase string) (interfaces.AbstractPath, error) {
	phrase = strings.TrimSpace(phrase)
	switch {
	case phrase == "":
		return interfaces.AbstractPath{}, ffserrors.NewFileError("Folder path is empty", "", nil)

	case strings.HasPrefix(phrase, "gdrive:"):
		device, err := f.googleDriveDevice()
		if err != nil {
			return interfaces.AbstractPath{}, err
		}
		return interfaces.AbstractPath{
			Device: device,
			Path:   interfaces.MakePath(strings.TrimPrefix(phrase, "gdrive:")),
		}, nil

	case strings.HasPrefix(phrase, "mem:"):
		rest := strings.TrimPrefix(phrase, "mem:")
		volume, path, _ := strings.Cut(rest, "/")
		return interfaces.AbstractPath{
			Device: f.memoryVolume(volume),
			Path:   interfaces.MakePath(path),
		}, nil

	default:
		abs, err := filepath.Abs(phrase)
		if err != nil {
			return interfaces.AbstractPath{}, ffserrors.NewFileError("Invalid folder path", phrase, err)
		}
		return interfaces.AbstractPath{
			Device: f.nativeDevice(),
			Path:   interfaces.MakePath(filepath.ToSlash(abs)),
		}, nil
	}
}

func (f *Factory) nativeDevice() *native.Device {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.nativeDev == nil {
		f.nativeDev = native.New()
	}
	return f.nativeDev
}

// googleDriveDevice connects lazily using the configured credentials
func (f *Factory) googleDriveDevice() (*gdrive.Device, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.gdriveDev != nil {
		return f.gdriveDev, nil
	}
	device, err := gdrive.New(f.ctx, &gdrive.Config{
		ClientID:     viper.GetString("gdrive.client_id"),
		ClientSecret: viper.GetString("gdrive.client_secret"),
		TokenFile:    viper.GetString("gdrive.token_file"),
		Account:      viper.GetString("gdrive.account"),
	})
	if err != nil {
		return nil, err
	}
	f.gdriveDev = device
	return device, nil
}

func (f *Factory) memoryVolume(name string) *memory.Device {
	f.mu.Lock()
	defer f.mu.Unlock()
	if dev, ok := f.memVolumes[name]; ok {
		return dev
	}
	dev := memory.New(name)
	f.memVolumes[name] = dev
	return dev
}
