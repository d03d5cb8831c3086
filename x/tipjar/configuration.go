package tipjar

import (
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/gconf"
	"github.com/iov-one/weave/migration"
	"github.com/iov-one/weave/orm"
)

func init() {
	migration.MustRegister(1, &Configuration{}, migration.NoModification)
}

// defaultMaxMemoLength limits the memo when no configuration was saved or
// the configuration does not declare a limit.
const defaultMaxMemoLength = 128

var _ orm.Model = (*Configuration)(nil)

func (c *Configuration) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", c.Metadata.Validate())
	errs = errors.AppendField(errs, "Owner", c.Owner.Validate())
	if c.MaxMemoLength < 0 {
		errs = errors.AppendField(errs, "MaxMemoLength",
			errors.Wrap(errors.ErrInput, "must not be negative"))
	}
	return errs
}

func loadConf(db gconf.ReadStore) (Configuration, error) {
	var conf Configuration
	if err := gconf.Load(db, "tipjar", &conf); err != nil {
		return conf, errors.Wrap(err, "load configuration")
	}
	return conf, nil
}

// maxMemoLength returns the longest memo a tip can carry.
func maxMemoLength(db gconf.ReadStore) (int, error) {
	switch conf, err := loadConf(db); {
	case err == nil && conf.MaxMemoLength > 0:
		return int(conf.MaxMemoLength), nil
	case err == nil, errors.ErrNotFound.Is(err):
		return defaultMaxMemoLength, nil
	default:
		return 0, err
	}
}
