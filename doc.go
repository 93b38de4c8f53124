// Package neat provides the genome, graph and network core of the NeuroEvolution of Augmenting Topologies (NEAT) algorithm.
//
// NEAT evolves both the weights and the structure of neural networks. Genomes grow by
// structural mutation, and historical markings let genomes with different topologies be
// aligned for crossover and compatibility distance.
//
// The core lives in three packages:
//
//   - neat: configuration, genes, genomes, historical markings, mutation, crossover and distance.
//   - neat/graph: the evaluation order derived from a genome's enabled connections, cycles included.
//   - neat/nn: the compiled network that evaluates a genome on an input vector.
//
// Selection, speciation and fitness are left to the caller; examples/xor shows a small loop.
//
// Basic usage:
//
//	// Load configuration
//	config, err := neat.LoadConfig("path/to/config")
//	if err != nil {
//		log.Fatalf("Error loading config: %v", err)
//	}
//
//	// One history per run, reset between generations
//	history := neat.NewHistory(config.Genome.NumInputs, config.Genome.NumOutputs)
//	genome, err := neat.NewGenome(&config.Genome, history)
//	if err != nil {
//		log.Fatalf("Error creating genome: %v", err)
//	}
//
//	genome.Mutate()
//	net, err := nn.New(genome, &config.Network)
//	if err != nil {
//		log.Fatalf("Error compiling network: %v", err)
//	}
//	outputs, err := net.Run([]float64{0, 1})
package neat
