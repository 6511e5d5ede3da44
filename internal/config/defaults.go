package config

const (
	defaultOutputDir         = "~/.local/share/capestudio/output"
	defaultStagingDir        = "~/.local/share/capestudio/staging"
	defaultCatalogPath       = "~/.local/share/capestudio/output/capesv2.json"
	defaultDatabasePath      = "~/.local/share/capestudio/capes.db"
	defaultLogDir            = "~/.local/share/capestudio/logs"
	defaultProxyBind         = "0.0.0.0:8080"
	defaultCatalogPageURL    = "https://store.mktpl.minecraft-services.net/api/v1.0/layout/pages/DressingRoom_Capes"
	defaultCatalogLookupURL  = "https://20ca2.playfabapi.com/Catalog/GetPublishedItem"
	defaultAssetHost         = "xforgeassets"
	defaultAssetBaseURL      = "https://xforgeassets001.xboxlive.com/pf-namespace-MUEPXTH6QO"
	defaultContentKey        = "s5s5ejuDru4uchuF2drUFuthaspAbepE"
	defaultLocale            = "en-US"
	defaultStaleStagingHours = 24
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"

	contentKeyEnv = "CAPESTUDIO_CONTENT_KEY"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir:    defaultOutputDir,
			StagingDir:   defaultStagingDir,
			CatalogPath:  defaultCatalogPath,
			DatabasePath: defaultDatabasePath,
			LogDir:       defaultLogDir,
		},
		Proxy: Proxy{
			Bind:             defaultProxyBind,
			CatalogPageURL:   defaultCatalogPageURL,
			CatalogLookupURL: defaultCatalogLookupURL,
			AssetHost:        defaultAssetHost,
			AssetBaseURL:     defaultAssetBaseURL,
		},
		Package: Package{
			ContentKey:        defaultContentKey,
			Locale:            defaultLocale,
			StaleStagingHours: defaultStaleStagingHours,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
