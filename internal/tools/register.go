package tools

import "github.com/mvaldes/mando/internal/tool"

// RegisterAll registers the full built-in tool set on the registry.
func RegisterAll(registry *tool.Registry, apps map[string]AllowedApp) error {
	all := []tool.Tool{
		WriteFile{},
		ReadFile{},
		ListFiles{},
		NewOpenApp(apps),
		OrganizeFolder{},
		DeleteFile{},
		RenameFile{},
		SearchText{},
		CreateProjectFolder{},
	}
	for _, t := range all {
		if err := registry.Register(t); err != nil {
			return err
		}
	}
	return nil
}
