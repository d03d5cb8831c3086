package tipjar

import (
	"github.com/iov-one/weave"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/gconf"
)

// Initializer fulfils the Initializer interface to load data from the genesis
// file
type Initializer struct{}

var _ weave.Initializer = (*Initializer)(nil)

// FromGenesis stores the configuration and creates all jars declared in the
// "tipjar" section. Jars are created empty, in the declared order.
func (*Initializer) FromGenesis(opts weave.Options, params weave.GenesisParams, db weave.KVStore) error {
	conf := Configuration{
		Metadata: &weave.Metadata{Schema: 1},
	}
	switch err := gconf.InitConfig(db, opts, "tipjar", &conf); {
	case err == nil, errors.ErrNotFound.Is(err):
		// Configuration is optional.
	default:
		return errors.Wrap(err, "cannot initialize gconf based configuration")
	}

	var jars []struct {
		Admin  weave.Address `json:"admin"`
		Ticker string        `json:"ticker"`
	}
	if err := opts.ReadOptions("tipjar", &jars); err != nil {
		return errors.Wrap(err, "cannot load jars")
	}
	ctrl := NewController(nil, nil)
	for i, j := range jars {
		if _, _, err := ctrl.CreateJar(db, j.Admin, j.Ticker); err != nil {
			return errors.Wrapf(err, "jar %d", i)
		}
	}
	return nil
}
