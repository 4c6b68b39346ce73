package cli

import (
	"context"
	"path/filepath"

	"github.com/bjax13/CookbookClub/internal/datastore"
	"github.com/bjax13/CookbookClub/internal/persistence/jsonfile"
)

type storageNote struct {
	FilePath string `json:"filePath"`
	Storage  string `json:"storage"`
	Note     string `json:"note"`
}

type importResult struct {
	ImportedFrom   string `json:"importedFrom"`
	ActiveDataFile string `json:"activeDataFile"`
}

var dataCommands = map[string]command{
	"data:export": {direct: func(ctx context.Context, env *commandEnv) (any, error) {
		out, err := env.inv.required("out")
		if err != nil {
			return nil, err
		}
		exportedTo, err := jsonfile.ExportToFile(out, env.workspace.Snapshot())
		if err != nil {
			return nil, err
		}
		return map[string]string{"exportedTo": exportedTo}, nil
	}},
	"data:import": {stateless: true, direct: func(ctx context.Context, env *commandEnv) (any, error) {
		in, err := env.inv.required("in")
		if err != nil {
			return nil, err
		}
		snapshot, err := jsonfile.ImportFromFile(in)
		if err != nil {
			return nil, err
		}
		if err := env.handle.Save(ctx, snapshot); err != nil {
			return nil, err
		}
		absolute, err := filepath.Abs(in)
		if err != nil {
			return nil, err
		}
		env.logger.InfoContext(ctx, "snapshot imported", "from", absolute, "to", env.handle.Path())
		return importResult{ImportedFrom: absolute, ActiveDataFile: env.handle.Path()}, nil
	}},
	"data:verify": {stateless: true, direct: func(ctx context.Context, env *commandEnv) (any, error) {
		in := env.inv.optional("in")
		if in == "" {
			if env.handle.Kind() != datastore.KindJSON {
				_, err := env.inv.required("in")
				return nil, err
			}
			in = env.handle.Path()
		}
		return jsonfile.VerifyFile(in)
	}},
	"data:info": {stateless: true, direct: func(ctx context.Context, env *commandEnv) (any, error) {
		store, ok := env.handle.SQLite()
		if !ok {
			return storageNote{
				FilePath: env.handle.Path(),
				Storage:  string(env.handle.Kind()),
				Note:     "Detailed table stats are only available for --storage sqlite.",
			}, nil
		}
		return store.Info(ctx)
	}},
	"data:doctor": {stateless: true, direct: func(ctx context.Context, env *commandEnv) (any, error) {
		store, ok := env.handle.SQLite()
		if !ok {
			return storageNote{
				FilePath: env.handle.Path(),
				Storage:  string(env.handle.Kind()),
				Note:     "`data doctor` is only available for --storage sqlite.",
			}, nil
		}
		if env.inv.flag("repair") {
			return store.Repair(ctx)
		}
		return store.Doctor(ctx)
	}},
}
