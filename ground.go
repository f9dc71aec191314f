package tether

import (
	"github.com/akmonengine/tether/actor"
	"github.com/akmonengine/tether/constraint"
)

// detectGroundContacts tests every movable body against every static plane.
// There is no body/body collision: links of the chain pass through each other.
func (w *World) detectGroundContacts() ([]*constraint.ContactConstraint, []pairKey) {
	var contacts []*constraint.ContactConstraint
	var pairs []pairKey

	for planeID, planeBody := range w.Bodies {
		plane, ok := planeBody.Shape.(*actor.Plane)
		if !ok || planeBody.BodyType != actor.BodyTypeStatic {
			continue
		}
		planeAABB := plane.GetAABB()
		origin := plane.Origin(planeBody.Transform)

		for bodyID, body := range w.Bodies {
			if body.BodyType == actor.BodyTypeStatic || body.Shape.Type() == actor.ShapeTypePlane {
				continue
			}
			if !planeAABB.Overlaps(body.Shape.GetAABB()) {
				continue
			}

			collision, result := body.Shape.CollideWithPlane(plane.Normal, origin, body.Transform)
			if !collision {
				continue
			}

			points := make([]constraint.ContactPoint, 0, len(result))
			for _, point := range result {
				points = append(points, constraint.ContactPoint{Position: point.Position, Penetration: point.Penetration})
			}

			contacts = append(contacts, &constraint.ContactConstraint{
				BodyA:  planeBody,
				BodyB:  body,
				Normal: plane.Normal,
				Points: points,
			})
			pairs = append(pairs, makePairKey(BodyID(planeID), BodyID(bodyID)))
		}
	}

	return contacts, pairs
}
