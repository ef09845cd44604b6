package assets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spaghettifunk/flatgl/engine/assets/loaders"
	"github.com/spaghettifunk/flatgl/engine/core"
	"github.com/spaghettifunk/flatgl/engine/renderer/metadata"
)

// Capacity of the change queue between the watcher and the render thread.
const changeQueueSize = 64

type AssetInfo struct {
	Path       string
	Type       metadata.ResourceType
	LastLoaded time.Time
}

// AssetManager indexes the files under a root directory and, when watching,
// reports changed shader sources. The watcher goroutine never touches the
// graphics driver; the render thread collects changes with DrainChanges.
type AssetManager struct {
	root    string
	assets  map[string]AssetInfo
	loaders map[metadata.ResourceType]Loader

	mutex sync.RWMutex

	done     chan struct{}
	stopped  chan struct{}
	fsnotify *fsnotify.Watcher
	watching bool
	isClosed bool
	changes  chan string
}

func NewAssetManager() (*AssetManager, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &AssetManager{
		assets:   make(map[string]AssetInfo),
		loaders:  make(map[metadata.ResourceType]Loader),
		fsnotify: fsWatch,
		changes:  make(chan string, changeQueueSize),
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}, nil
}

// Initialize indexes assetsDir and, if watch is set, starts reporting changes.
func (am *AssetManager) Initialize(assetsDir string, watch bool) error {
	if am.isClosed {
		return errors.New("asset manager already closed")
	}
	info, err := os.Stat(assetsDir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", core.ErrInvalidArgument, assetsDir)
	}
	am.root = filepath.Clean(assetsDir)

	// Register loaders
	am.registerLoader(metadata.ResourceTypeShader, &loaders.ShaderLoader{})

	if err := am.watchRecursive(am.root, !watch); err != nil {
		return err
	}
	if watch {
		am.watching = true
		go am.start()
		core.LogInfo("watching %s for shader changes", am.root)
	}
	return nil
}

func (am *AssetManager) Root() string {
	return am.root
}

// Path returns the location of name inside the asset root.
func (am *AssetManager) Path(name string) string {
	return filepath.Join(am.root, name)
}

// Register loaders for each asset type
func (am *AssetManager) registerLoader(assetType metadata.ResourceType, loader Loader) {
	am.loaders[assetType] = loader
}

// LoadAsset reads name, relative to the asset root, with the loader of its type.
func (am *AssetManager) LoadAsset(name string, params interface{}) (*metadata.Resource, error) {
	path := am.Path(name)

	am.mutex.Lock()
	asset, exists := am.assets[path]
	if !exists {
		// The index can lag behind the file system between two watcher events.
		if _, err := os.Stat(path); err != nil {
			am.mutex.Unlock()
			return nil, fmt.Errorf("%w: asset %s", core.ErrNotFound, path)
		}
		asset = AssetInfo{Path: path, Type: determineAssetType(path)}
	}
	// Update the loaded time
	asset.LastLoaded = time.Now()
	am.assets[path] = asset
	am.mutex.Unlock()

	loader, loaderExists := am.loaders[asset.Type]
	if !loaderExists {
		return nil, fmt.Errorf("%w: no loader registered for %s", core.ErrNotFound, path)
	}
	return loader.Load(path, asset.Type, params)
}

func (am *AssetManager) UnloadAsset(asset *metadata.Resource) error {
	loader, ok := am.loaders[asset.Type]
	if !ok {
		return nil
	}
	return loader.Unload(asset)
}

// Assets returns the indexed paths of type t.
func (am *AssetManager) Assets(t metadata.ResourceType) []string {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	var paths []string
	for p, a := range am.assets {
		if a.Type == t {
			paths = append(paths, p)
		}
	}
	return paths
}

// DrainChanges returns the shader paths changed since the last call, each
// once, in the order they were first reported. It never blocks.
func (am *AssetManager) DrainChanges() []string {
	var paths []string
	seen := make(map[string]bool)
	for {
		select {
		case p := <-am.changes:
			if !seen[p] {
				seen[p] = true
				paths = append(paths, p)
			}
		default:
			return paths
		}
	}
}

// Shutdown stops the watcher. It is safe to call more than once.
func (am *AssetManager) Shutdown() error {
	if am.isClosed {
		return nil
	}
	am.isClosed = true
	if am.watching {
		close(am.done)
		<-am.stopped
		return nil
	}
	return am.fsnotify.Close()
}

func (am *AssetManager) start() {
	defer close(am.stopped)
	for {
		select {
		case e, ok := <-am.fsnotify.Events:
			if !ok {
				return
			}
			am.handleEvent(e)

		case err, ok := <-am.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError("asset watcher: %s", err)

		case <-am.done:
			am.fsnotify.Close()
			return
		}
	}
}

func (am *AssetManager) handleEvent(e fsnotify.Event) {
	path := filepath.Clean(e.Name)

	s, err := os.Stat(path)
	if err == nil && s.IsDir() {
		if e.Has(fsnotify.Create) {
			am.watchRecursive(path, false)
		}
		return
	}
	// Handle create or modify events
	if e.Has(fsnotify.Create) || e.Has(fsnotify.Write) {
		if am.handleFileEvent(path) == metadata.ResourceTypeShader {
			am.publish(path)
		}
	}
	if e.Has(fsnotify.Remove) || e.Has(fsnotify.Rename) {
		am.removeAsset(path)
	}
}

func (am *AssetManager) publish(path string) {
	select {
	case am.changes <- path:
		core.LogDebug("shader source changed: %s", path)
	default:
		core.LogWarn("shader change queue full, dropping %s", path)
	}
}

// watchRecursive indexes every file under path and adds every directory to
// the watch list, unless indexOnly is set.
func (am *AssetManager) watchRecursive(path string, indexOnly bool) error {
	return filepath.Walk(path, func(walkPath string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			if indexOnly {
				return nil
			}
			return am.fsnotify.Add(walkPath)
		}
		am.handleFileEvent(filepath.Clean(walkPath))
		return nil
	})
}

// Handle the creation or modification of a file
func (am *AssetManager) handleFileEvent(path string) metadata.ResourceType {
	assetType := determineAssetType(path)
	if assetType == metadata.ResourceTypeNone {
		return assetType
	}

	am.mutex.Lock()
	defer am.mutex.Unlock()
	am.assets[path] = AssetInfo{
		Path: path,
		Type: assetType,
	}
	return assetType
}

// Remove the asset from the index if it was deleted
func (am *AssetManager) removeAsset(path string) {
	am.mutex.Lock()
	defer am.mutex.Unlock()

	delete(am.assets, path)
}

func determineAssetType(path string) metadata.ResourceType {
	if _, ok := metadata.ShaderStageForPath(path); ok {
		return metadata.ResourceTypeShader
	}
	switch filepath.Ext(path) {
	case ".txt", ".toml":
		return metadata.ResourceTypeText
	default:
		return metadata.ResourceTypeNone
	}
}
