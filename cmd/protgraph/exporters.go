package main

import (
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/protgraph/internal/export"
	"github.com/inodb/protgraph/internal/mass"
)

func addExportFlags(flags *pflag.FlagSet) {
	flags.String("export_output_folder", "exported_graphs", "Directory for exported graph files (dot, graphml, gml)")
	flags.Bool("export_in_directories", false, "Shard exported files into nested directories coded by accession")
	flags.Bool("export_dot", false, "Export a Graphviz dot file per protein")
	flags.Bool("export_graphml", false, "Export a GraphML file per protein (recommended file format)")
	flags.Bool("export_gml", false, "Export a GML file per protein")

	flags.Bool("export_postgres", false, "Export nodes and edges tables to a PostgreSQL server")
	flags.String("postgres_host", "127.0.0.1", "PostgreSQL host")
	flags.Int("postgres_port", 5433, "PostgreSQL port")
	flags.String("postgres_user", "postgres", "PostgreSQL user")
	flags.String("postgres_password", "developer", "PostgreSQL password")
	flags.String("postgres_database", "proteins", "PostgreSQL database")

	flags.Bool("export_pep_postgres", false, "Enumerate bounded paths and export peptides to a PostgreSQL server")
	flags.Int("pep_hops", 9, "Maximum number of hops (edges) of enumerated peptide paths")
	flags.Int("pep_miscleavages", -1, "Maximum miscleavages per enumerated peptide; -1 keeps all")
	flags.Int("pep_min_pep_length", 0, "Minimum residue length of enumerated peptides")

	flags.Bool("export_neo4j", false, "Export graphs to a Neo4j server")
	flags.String("neo4j_uri", "neo4j://localhost:7687", "Neo4j connection URI")
	flags.String("neo4j_user", "neo4j", "Neo4j user")
	flags.String("neo4j_password", "", "Neo4j password")
	flags.String("neo4j_database", "neo4j", "Neo4j database")

	flags.Bool("export_duckdb", false, "Export nodes and edges to a local DuckDB file (sharded per worker)")
	flags.String("duckdb_path", "protein_graphs.duckdb", "DuckDB output path")
}

// exporterFactory builds the per-worker exporter set from the export flags.
func exporterFactory(massKind mass.Kind, logger *zap.Logger) func(worker int) *export.Set {
	fileCfg := export.FileConfig{
		Folder:        viper.GetString("export_output_folder"),
		InDirectories: viper.GetBool("export_in_directories"),
	}
	pgCfg := export.PostgresConfig{
		Host:     viper.GetString("postgres_host"),
		Port:     viper.GetInt("postgres_port"),
		User:     viper.GetString("postgres_user"),
		Password: viper.GetString("postgres_password"),
		Database: viper.GetString("postgres_database"),
	}

	return func(worker int) *export.Set {
		var exporters []export.Exporter
		if viper.GetBool("export_dot") {
			exporters = append(exporters, export.NewDotExporter(fileCfg))
		}
		if viper.GetBool("export_graphml") {
			exporters = append(exporters, export.NewGraphMLExporter(fileCfg))
		}
		if viper.GetBool("export_gml") {
			exporters = append(exporters, export.NewGMLExporter(fileCfg))
		}
		if viper.GetBool("export_postgres") {
			exporters = append(exporters, export.NewPostgresExporter(pgCfg, massKind, logger))
		}
		if viper.GetBool("export_pep_postgres") {
			exporters = append(exporters, export.NewPepPostgresExporter(pgCfg, export.PeptideOptions{
				MaxHops:          viper.GetInt("pep_hops"),
				MaxMiscleavages:  viper.GetInt("pep_miscleavages"),
				MinPeptideLength: viper.GetInt("pep_min_pep_length"),
			}, logger))
		}
		if viper.GetBool("export_neo4j") {
			exporters = append(exporters, export.NewNeo4jExporter(export.Neo4jConfig{
				URI:      viper.GetString("neo4j_uri"),
				User:     viper.GetString("neo4j_user"),
				Password: viper.GetString("neo4j_password"),
				Database: viper.GetString("neo4j_database"),
			}, logger))
		}
		if viper.GetBool("export_duckdb") {
			exporters = append(exporters, export.NewDuckDBExporter(viper.GetString("duckdb_path"), worker))
		}
		return export.NewSet(logger, exporters...)
	}
}
