// Package source attributes an earthquake to its geological source.
//
// Classification runs in three stages. IsInland tests the epicenter against
// the land layer and NearestFault measures it against every fault segment;
// the two are independent and Classifier runs them concurrently. Attribute
// then combines their results with the focal depth into a single label:
// "subduction zone", the nearest fault's name, or "Local Fault".
//
// Every stage is a pure function of its inputs. Layers are never mutated,
// so one loaded layer can serve any number of concurrent classifications.
package source
