// Package analysis post-processes recorded fluid runs.
//
//   - [PowerSpectrum] and [DominantFrequency]: sloshing modes of a sampled
//     series such as kinetic energy
//   - [Describe]: summary statistics of a series
//   - [SettleTick]: when a series comes to rest
//   - [HeightProfile]: vertical distribution of particles in a snapshot
//
// Frequencies are in cycles per tick; divide by the sampling interval used
// when recording if samples were not taken every tick.
package analysis
