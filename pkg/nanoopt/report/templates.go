package report

import "strings"

// PackageToken is replaced by the package name in LazyTemplate.
const PackageToken = "{0}"

// LazyTemplate is the lazy initialization post processor source, with
// "\n" line endings.
const LazyTemplate = "\n\npackage {0};\n" +
	"import java.util.Locale;\n" +
	"import org.slf4j.Logger;\n" +
	"import org.slf4j.LoggerFactory;\n" +
	"import org.springframework.beans.BeansException;\n" +
	"import org.springframework.beans.factory.config.BeanFactoryPostProcessor;\n" +
	"import org.springframework.beans.factory.config.ConfigurableListableBeanFactory;\n" +
	"import org.springframework.context.annotation.Configuration;\n" +
	"\n" +
	"@Configuration\n" +
	"public class LazyInitBeanFactoryPostProcessor implements BeanFactoryPostProcessor {\n" +
	"    private static Logger logger = LoggerFactory.getLogger(LazyInitBeanFactoryPostProcessor.class);\n" +
	"\n" +
	"\t@Override\n" +
	"\tpublic void postProcessBeanFactory(ConfigurableListableBeanFactory beanFactory) throws BeansException {\n" +
	"\t\tlogger.debug(\"start lazy post processor...\");\n" +
	"\t\tfor (String beanName : beanFactory.getBeanDefinitionNames()) {\n" +
	"\t\t\tif (filteringWith(beanName)) {\n" +
	"\t\t\t\tlogger.debug(\"skipping bean: {}\", beanName);\n" +
	"\t\t\t\tcontinue;\n" +
	"\t\t\t}\n" +
	"\t\t\tbeanFactory.getBeanDefinition(beanName).setLazyInit(true);\n" +
	"\t\t}\n" +
	"\t\tlogger.debug(\"stop lazy post processor...\");\n" +
	"\t}\n" +
	"\n" +
	"\t//\n" +
	"\t// TODO Change this method, based on your need\n" +
	"\t//      Generally this work fine with spring-fox (swagger2)\n" +
	"\t//\n" +
	"\tprotected boolean filteringWith(String beanName) {\n" +
	"\t\treturn beanName.toLowerCase(Locale.ENGLISH).contains(\"mvc\");\n" +
	"\t}\n" +
	"\n" +
	"}// END"

// ApplicationProperties is the baseline Spring Boot configuration, with
// "\n" line endings.
const ApplicationProperties = "\n\n#DISABLE BANNER\n" +
	"spring.main.banner-mode=off\n" +
	"#DISABLE STARTUP INFO\n" +
	"spring.main.logStartupInfo=false\n" +
	"#DISABLE JMX (if not already done in command line)\n" +
	"spring.jmx.enabled=false\n" +
	"#DISABLE ERROR PAGE\n" +
	"server.error.whitelabel.enabled=false\n" +
	"#DISABLE JSP REGISTRATION\n" +
	"server.jsp-servlet.registered=false\n" +
	"#DISABLE TEMPLATING TECHNOLOGIES\n" +
	"spring.freemarker.enabled=false\n" +
	"spring.groovy.template.enabled=false\n" +
	"#DISABLE UPLOAD SUPPORT]\n" +
	"spring.http.multipart.enabled=false\n" +
	"#DISABLE SITE PREFERENCE FOR MOBILE\n" +
	"spring.mobile.sitepreference.enabled=false\n" +
	"#DISABLE SESSION TABLE AT STARTUP]\n" +
	"spring.session.jdbc.initializer.enabled=false\n" +
	"#DISABLE TEMPLATE CACHING]\n" +
	"spring.thymeleaf.cache=false\n" +
	"#\n" +
	"# LOGGING LEVEL\n" +
	"#\n" +
	"#  show nothing [logging.level.root=WARN]\n" +
	"#\n" +
	"logging.level.org.springframework.boot=WARN\n" +
	"logging.level.org.springframework=WARN\n" +
	"logging.level.org.apache.tomcat=WARN\n" +
	"logging.level.org.apache.catalina=WARN\n" +
	"logging.level.org.eclipse.jetty=WARN\n" +
	"logging.level.org.hibernate.tool.hbm2ddl=WARN\n" +
	"logging.level.org.hibernate.SQL=WARN\n" +
	"#\n" +
	"# TOMCAT TUNING\n" +
	"#\n" +
	"#\n" +
	"server.tomcat.min-spare-threads=15\n" +
	"server.tomcat.max-threads=45\n" +
	"server.tomcat.accept-count=120\n" +
	"server.tomcat.max-connections=6000"

// RenderLazyTemplate substitutes every PackageToken with pkg and converts
// line endings to sep. An empty pkg leaves the token in place.
func RenderLazyTemplate(pkg, sep string) string {
	text := LazyTemplate
	if pkg != "" {
		text = strings.ReplaceAll(text, PackageToken, pkg)
	}
	return withSeparator(text, sep)
}

// RenderProperties returns ApplicationProperties with sep line endings.
func RenderProperties(sep string) string {
	return withSeparator(ApplicationProperties, sep)
}

func withSeparator(text, sep string) string {
	if sep == "" || sep == "\n" {
		return text
	}
	return strings.ReplaceAll(text, "\n", sep)
}
