package tasks

// DefineTasks registers all available tasks
func DefineTasks() {
	RegisterHandler(SendNotificationTask.TaskID(), SendNotificationTask.HandleExecution)
	RegisterHandler(ExpirePendingTask.TaskID(), ExpirePendingTask.HandleExecution)
	RegisterHandler(VerifyPendingPaymentsTask.TaskID(), VerifyPendingPaymentsTask.HandleExecution)
}
