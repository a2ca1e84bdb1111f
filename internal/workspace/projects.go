package workspace

import "path/filepath"

// ProjectsDirName is the directory under the workspace root that holds
// agent-created project folders.
const ProjectsDirName = "proyectos"

// ProjectSubdirs is the fixed subtree created inside every project folder.
var ProjectSubdirs = []string{"entrada", "salida", "notas", "assets"}

// ProjectRel returns the workspace-relative path of a project folder.
func ProjectRel(folderName string) string {
	return filepath.Join(ProjectsDirName, folderName)
}
