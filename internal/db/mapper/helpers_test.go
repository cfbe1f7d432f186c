package mapper

import dbstore "sql-eval/internal/db/dbstore"

func dbRun(p dbstore.CreateRunParams) dbstore.Run {
	return dbstore.Run(p)
}

func dbRunItem(p dbstore.CreateRunItemParams) dbstore.RunItem {
	return dbstore.RunItem(p)
}
