package api

import (
	apiutil "github.com/absmach/supermq/api/http/util"

	"github.com/urosmart/uroedge/pkg/fedavg"
)

type addUpdateReq struct {
	fedavg.ModelUpdate `json:",inline"`
}

func (r *addUpdateReq) validate() error {
	return fedavg.Validate(r.ModelUpdate)
}

type checkVersionReq struct {
	version int
}

func (r *checkVersionReq) validate() error {
	if r.version < 0 {
		return apiutil.ErrValidation
	}

	return nil
}

type detectReq struct {
	image      []byte
	confidence float64
}

func (r *detectReq) validate() error {
	if len(r.image) == 0 {
		return apiutil.ErrMissingID
	}

	return nil
}

type emptyReq struct{}

func (r *emptyReq) validate() error {
	return nil
}
