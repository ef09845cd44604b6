package assets

import "github.com/spaghettifunk/flatgl/engine/renderer/metadata"

type Loader interface {
	Load(path string, assetType metadata.ResourceType, params interface{}) (*metadata.Resource, error) // `interface{}` here allows loaders to take per-type options
	Unload(*metadata.Resource) error
}
