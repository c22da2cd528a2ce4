package null

import (
	"github.com/meshwire/zmtp"
)

const MechName = "NULL"

func init() {
	zmtp.RegisterMechanism(MechName, func() zmtp.Mechanism {
		return Null{}
	})
}
