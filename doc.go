/*
	Project: GetSkill - review workflow and attendance tracking for cohort-based learning.

	apps/api    HTTP API (echo) wired with dig
	apps/admin  maintenance CLI: migrations, accounts, seed reset, export, cohort report
	core        domain services: user, task, catalog, review, notification, attendance
	storage     snapshot stores (memory, file, postgres) behind the in-memory database
*/
package getskill
