// Package region holds the Seoul geography used to steer geocoding and to pick out
// assemblies held in Jongno-gu: bounding boxes, district names and the police
// stations that serve them, and well-known Jongno landmarks.
package region
