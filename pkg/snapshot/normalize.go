package snapshot

import "math"

// normFloat maps NaN and infinities to null. JSON encoders disagree on
// non-finite floats, so they never reach the database or the API.
func normFloat(v *float64) *float64 {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return nil
	}
	return v
}

func (c *Computation) normalize() {
	c.MeanQuantityByBsffPackagings = normFloat(c.MeanQuantityByBsffPackagings)
	c.MeanPackagingsByBsff = normFloat(c.MeanPackagingsByBsff)
}

func (r *InstallationRow) normalize() {
	r.QuantiteAutorisee = normFloat(r.QuantiteAutorisee)
	r.CumulQuantiteTraitee = normFloat(r.CumulQuantiteTraitee)
	r.MoyenneQuantiteJournaliereTraitee = normFloat(r.MoyenneQuantiteJournaliereTraitee)
	r.TauxConsommation = normFloat(r.TauxConsommation)
	r.Latitude = normFloat(r.Latitude)
	r.Longitude = normFloat(r.Longitude)
}

func (r *GeoRow) normalize() {
	r.QuantiteAutorisee = normFloat(r.QuantiteAutorisee)
	r.CumulQuantiteTraitee = normFloat(r.CumulQuantiteTraitee)
	r.MoyenneQuantiteJournaliereTraitee = normFloat(r.MoyenneQuantiteJournaliereTraitee)
	r.TauxConsommation = normFloat(r.TauxConsommation)
}
